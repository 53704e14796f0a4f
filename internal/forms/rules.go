package forms

import "holidaze/internal/domain"

var LoginRules = Table{
	"Identifier": {Name: "identifier", Default: "Please enter your username/email address"},
	"Password":   {Name: "password", Default: "Please enter your password"},
}

// Price reports the same message for a missing and a non-numeric value.
var EstablishmentRules = Table{
	"Name":        {Name: "name", Default: "Establishment name is required"},
	"Price":       {Name: "price", Default: "Price is required", Messages: map[string]string{"price": "Price is required"}},
	"Description": {Name: "description", Default: "Description is required"},
	"Image":       {Name: "files", Default: "Please choose an image"},
}

func ValidateLogin(c domain.LoginCredentials) Errors { return Validate(c, LoginRules) }

func ValidateEstablishment(d domain.EstablishmentDraft) Errors {
	return Validate(d, EstablishmentRules)
}
