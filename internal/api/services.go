package api

// Service accessors group Client methods by resource family.
// Each service embeds *Client so it satisfies Requester.

type UserService struct{ *Client }

type SystemService struct{ *Client }

type StationService struct{ *Client }

type DataService struct{ *Client }

type ForecastService struct{ *Client }

type DiseaseService struct{ *Client }

type DevService struct{ *Client }

type ChartService struct{ *Client }

type CameraService struct{ *Client }

func (c *Client) User() UserService {
	return UserService{c}
}

func (c *Client) System() SystemService {
	return SystemService{c}
}

func (c *Client) Station() StationService {
	return StationService{c}
}

func (c *Client) Data() DataService {
	return DataService{c}
}

func (c *Client) Forecast() ForecastService {
	return ForecastService{c}
}

func (c *Client) Disease() DiseaseService {
	return DiseaseService{c}
}

func (c *Client) Dev() DevService {
	return DevService{c}
}

func (c *Client) Chart() ChartService {
	return ChartService{c}
}

func (c *Client) Camera() CameraService {
	return CameraService{c}
}
