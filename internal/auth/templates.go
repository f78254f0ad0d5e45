package auth

const callbackPage = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>FieldClimate CLI - {{.Title}}</title>
    <style>
        :root {
            --bg: #0f1412;
            --fg: #e6efe9;
            --muted: #8fa39a;
            --accent: #5cb85c;
        }
        body {
            margin: 0;
            min-height: 100vh;
            display: flex;
            align-items: center;
            justify-content: center;
            background: var(--bg);
            color: var(--fg);
            font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", sans-serif;
        }
        main {
            max-width: 420px;
            padding: 32px;
            text-align: center;
        }
        h1 {
            font-size: 20px;
            color: var(--accent);
        }
        p {
            color: var(--muted);
            word-break: break-all;
        }
    </style>
</head>
<body>
    <main>
        <h1>{{.Title}}</h1>
        <p>{{.Message}}</p>
    </main>
</body>
</html>
`
