package models

// CreateRuleInput используется для приёма данных из JSON-запроса,
// прежде чем конвертировать их в AlertRule.
type CreateRuleInput struct {
	Origin      string  `json:"origin" validate:"required,alpha,len=3"`
	Destination string  `json:"destination" validate:"required,alpha,len=3,nefield=Origin"`
	SearchMonth string  `json:"search_month" validate:"required,datetime=2006-01"`
	DurationMin int     `json:"duration_min" validate:"required,gte=1"`
	DurationMax int     `json:"duration_max" validate:"required,gtefield=DurationMin"`
	Threshold   float64 `json:"threshold" validate:"required,gt=0"`
}

// SearchInput используется для приёма параметров интерактивного поиска.
// Длительности необязательны: по умолчанию поездка 2-7 дней.
type SearchInput struct {
	Origin      string `json:"origin" validate:"required,alpha,len=3"`
	Destination string `json:"destination" validate:"required,alpha,len=3,nefield=Origin"`
	Month       string `json:"month" validate:"required,datetime=2006-01"`
	DurationMin int    `json:"duration_min" validate:"omitempty,gte=1"`
	DurationMax int    `json:"duration_max" validate:"omitempty,gtefield=DurationMin"`
}
