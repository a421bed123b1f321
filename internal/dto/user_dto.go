package dto

type CreateUserRequest struct {
	Username   string  `json:"username"    validate:"required,min=3,max=40"`
	Name       string  `json:"name"        validate:"required,min=2"`
	Email      *string `json:"email"       validate:"omitempty,email"`
	Password   string  `json:"password"    validate:"required,min=8"`
	Role       string  `json:"role"        validate:"required,oneof=cashier supervisor admin"`
	LocationID *string `json:"location_id" validate:"omitempty,uuid"`
}

type UpdateUserRequest struct {
	Name       string  `json:"name"        validate:"required,min=2"`
	Email      *string `json:"email"       validate:"omitempty,email"`
	Password   *string `json:"password"    validate:"omitempty,min=8"`
	Role       string  `json:"role"        validate:"required,oneof=cashier supervisor admin"`
	LocationID *string `json:"location_id" validate:"omitempty,uuid"`
	IsActive   *bool   `json:"is_active"`
}
