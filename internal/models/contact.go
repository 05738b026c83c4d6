package models

// ContactMessage is one row of the messages table.
type ContactMessage struct {
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	Email     string `json:"email" validate:"required,mailbox"`
	Phone     string `json:"phone"`
	Subject   string `json:"subject" validate:"required"`
	Message   string `json:"message" validate:"required"`
}
