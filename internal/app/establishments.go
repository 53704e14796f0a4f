package app

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"holidaze/internal/adapters/observability"
	"holidaze/internal/domain"
	"holidaze/internal/forms"
)

type EstablishmentService struct {
	api     domain.ContentAPI
	flights singleflight.Group
}

func NewEstablishmentService(api domain.ContentAPI) *EstablishmentService {
	return &EstablishmentService{api: api}
}

// Create validates the draft and posts it. No request is made when a field
// fails validation. Backend failures collapse into domain.ErrSubmitFailed.
func (s *EstablishmentService) Create(ctx context.Context, sess domain.Session, d domain.EstablishmentDraft) (forms.Errors, error) {
	d.Price = strings.TrimSpace(d.Price)
	if errs := forms.ValidateEstablishment(d); errs.Any() {
		observability.ObserveForm("establishment", "invalid")
		return errs, nil
	}
	data, err := Payload(d)
	if err != nil {
		observability.ObserveForm("establishment", "invalid")
		return forms.Errors{forms.EstablishmentRules["Price"].Name: forms.EstablishmentRules["Price"].Default}, nil
	}
	js, err := data.JSON()
	if err != nil {
		return nil, domain.ErrSubmitFailed
	}
	// the upload is bounded by the handler, so hashing it in memory is fine
	raw, err := io.ReadAll(d.Image.Body)
	if err != nil {
		log.Warn().Err(err).Str("session", sess.ID()).Msg("read image failed")
		observability.ObserveForm("establishment", "error")
		return nil, domain.ErrSubmitFailed
	}
	img := *d.Image
	img.Size = int64(len(raw))

	key := flightKey(sess.ID(), "establishment", []byte(js), []byte(img.Filename), []byte(img.ContentType), raw)
	fctx := context.WithoutCancel(ctx)
	_, err, shared := s.flights.Do(key, func() (any, error) {
		img.Body = bytes.NewReader(raw)
		return nil, s.api.CreateEstablishment(fctx, sess.Token(), data, img)
	})
	if err != nil {
		log.Warn().Err(err).Str("session", sess.ID()).Str("name", d.Name).Bool("shared", shared).
			Msg("create establishment failed")
		observability.ObserveForm("establishment", "error")
		return nil, domain.ErrSubmitFailed
	}
	log.Info().Str("name", d.Name).Msg("establishment added")
	observability.ObserveForm("establishment", "success")
	return nil, nil
}

// Payload maps a validated draft to the wire data. Status is always publish.
func Payload(d domain.EstablishmentDraft) (domain.EstablishmentData, error) {
	price, ok := forms.ParsePrice(d.Price)
	if !ok {
		return domain.EstablishmentData{}, fmt.Errorf("price: %q is not a finite number", d.Price)
	}
	return domain.EstablishmentData{
		Hotel:             d.Hotel,
		BedAndBreakfast:   d.BedAndBreakfast,
		Guesthouse:        d.Guesthouse,
		ParkingAvailable:  d.ParkingAvailable,
		BreakfastIncluded: d.BreakfastIncluded,
		Restaurant:        d.Restaurant,
		PetFriendly:       d.PetFriendly,
		Bar:               d.Bar,
		Name:              d.Name,
		Price:             price,
		Description:       d.Description,
		Status:            domain.StatusPublish,
	}, nil
}
