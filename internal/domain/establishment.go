package domain

import (
	"encoding/json"
	"io"
)

const StatusPublish = "publish"

// Image is the single file attached to an establishment draft.
type Image struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// EstablishmentDraft holds the fields of the add-establishment form.
// Price stays the raw input so the numeric check can report it per field.
type EstablishmentDraft struct {
	Name        string `validate:"required"`
	Price       string `validate:"required,price"`
	Description string `validate:"required"`
	Image       *Image `validate:"required"`

	Hotel           bool
	BedAndBreakfast bool
	Guesthouse      bool

	ParkingAvailable  bool
	BreakfastIncluded bool
	Restaurant        bool
	PetFriendly       bool
	Bar               bool
}

// EstablishmentData is the JSON sent in the multipart "data" field.
// Field order matches the wire format.
type EstablishmentData struct {
	Hotel             bool    `json:"hotel"`
	BedAndBreakfast   bool    `json:"bed_and_breakfast"`
	Guesthouse        bool    `json:"guesthouse"`
	ParkingAvailable  bool    `json:"parking_available"`
	BreakfastIncluded bool    `json:"breakfast_included"`
	Restaurant        bool    `json:"restaurant"`
	PetFriendly       bool    `json:"pet_friendly"`
	Bar               bool    `json:"bar"`
	Name              string  `json:"name"`
	Price             float64 `json:"price"`
	Description       string  `json:"description"`
	Status            string  `json:"status"`
}

func (d EstablishmentData) JSON() (string, error) {
	b, err := json.Marshal(d)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
