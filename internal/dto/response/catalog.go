package response

type ServiceCategoryResponse struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	ImageURL    *string `json:"image_url,omitempty"`
}

type ServiceResponse struct {
	ID             string  `json:"id"`
	CategoryID     string  `json:"category_id"`
	Name           string  `json:"name"`
	BasePrice      float64 `json:"base_price"`
	FormattedPrice string  `json:"formatted_price"`
	EstimatedTime  string  `json:"estimated_time"`
}

type CityResponse struct {
	CityName string         `json:"city_name"`
	Areas    []AreaResponse `json:"areas"`
}

type AreaResponse struct {
	ID       string `json:"id"`
	AreaName string `json:"area_name"`
}
