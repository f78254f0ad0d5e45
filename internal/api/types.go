package api

// User is the account returned by GET user.
type User struct {
	Username   string       `json:"username"`
	CreatedBy  string       `json:"created_by,omitempty"`
	CreateTime string       `json:"create_time,omitempty"`
	LastAccess string       `json:"last_access,omitempty"`
	Info       UserInfo     `json:"info"`
	Company    UserCompany  `json:"company"`
	Address    UserAddress  `json:"address"`
	Settings   UserSettings `json:"settings"`
}

type UserInfo struct {
	Name      string `json:"name"`
	Lastname  string `json:"lastname"`
	Email     string `json:"email"`
	Title     string `json:"title,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Cellphone string `json:"cellphone,omitempty"`
	Fax       string `json:"fax,omitempty"`
}

type UserCompany struct {
	Name       string `json:"name"`
	Profession string `json:"profession,omitempty"`
	Department string `json:"department,omitempty"`
}

type UserAddress struct {
	Country  string `json:"country"`
	Street   string `json:"street,omitempty"`
	City     string `json:"city,omitempty"`
	District string `json:"district,omitempty"`
	Zip      string `json:"zip,omitempty"`
}

type UserSettings struct {
	Language   string `json:"language"`
	Newsletter bool   `json:"newsletter,omitempty"`
	UnitSystem string `json:"unit_system,omitempty"`
}

// Station is one entry of GET user/stations.
type Station struct {
	Name     StationName     `json:"name"`
	Info     StationInfo     `json:"info"`
	Dates    StationDates    `json:"dates"`
	Position StationPosition `json:"position"`
	Rights   string          `json:"rights,omitempty"`
}

// StationName carries the device serial (Original) and the user's label.
type StationName struct {
	Original string `json:"original"`
	Custom   string `json:"custom,omitempty"`
}

type StationInfo struct {
	DeviceName  string `json:"device_name,omitempty"`
	UID         string `json:"uid,omitempty"`
	Firmware    string `json:"firmware,omitempty"`
	Hardware    string `json:"hardware,omitempty"`
	Description string `json:"description,omitempty"`
}

type StationDates struct {
	MinDate           string `json:"min_date,omitempty"`
	MaxDate           string `json:"max_date,omitempty"`
	CreatedAt         string `json:"created_at,omitempty"`
	LastCommunication string `json:"last_communication,omitempty"`
}

type StationPosition struct {
	Geo struct {
		Coordinates []float64 `json:"coordinates,omitempty"`
	} `json:"geo"`
	Altitude float64 `json:"altitude,omitempty"`
}

// ID returns the station identifier used in routes.
func (s Station) ID() string {
	return s.Name.Original
}

// DisplayName prefers the custom label over the serial.
func (s Station) DisplayName() string {
	if s.Name.Custom != "" {
		return s.Name.Custom
	}
	return s.Name.Original
}

// Sensor is one entry of GET system/sensors or GET station/{id}/sensors.
type Sensor struct {
	Name       string `json:"name"`
	NameCustom string `json:"name_custom,omitempty"`
	Color      string `json:"color,omitempty"`
	Decimals   int    `json:"decimals,omitempty"`
	Unit       string `json:"unit,omitempty"`
	Ch         int    `json:"ch,omitempty"`
	Code       int    `json:"code"`
	Group      int    `json:"group,omitempty"`
	Mac        string `json:"mac,omitempty"`
	Serial     string `json:"serial,omitempty"`
	IsActive   bool   `json:"isActive,omitempty"`
}
