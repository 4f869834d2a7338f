package models

// Plan тарифный план. На проводе называется Product.
type Plan struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Speed       int     `json:"speed"` // Мбит/с
	Price       float64 `json:"price"` // в месяц, валюта не фиксирована
	Description string  `json:"description"`
}

// PlanInput данные для создания тарифа.
type PlanInput struct {
	Name        string  `json:"name" validate:"required"`
	Speed       int     `json:"speed" validate:"gt=0"`
	Price       float64 `json:"price" validate:"gte=0"`
	Description string  `json:"description"`
}

// PlanUpdate полная запись тарифа для замены.
type PlanUpdate struct {
	ID          string  `json:"id" validate:"required"`
	Name        string  `json:"name" validate:"required"`
	Speed       int     `json:"speed" validate:"gt=0"`
	Price       float64 `json:"price" validate:"gte=0"`
	Description string  `json:"description"`
}

// Plan превращает запрос на замену в доменную запись.
func (u PlanUpdate) Plan() Plan {
	return Plan(u)
}
