package load

import (
	"errors"
	"fmt"
	"time"

	types "github.com/vinishamanek/bookgraph/internal/domain"
	"github.com/vinishamanek/bookgraph/internal/modules/catalog/reconcile"
)

// Validation sits at the store boundary, not in the reconciler: a book
// that fails here is rejected whole, it never reaches a transaction.

const minPublicationYear = 1400

var (
	errNoTitle      = errors.New("missing title")
	errNoIdentifier = errors.New("no external identifier")
)

func validate(b *reconcile.Book) error {
	if b.Title == "" {
		return errNoTitle
	}
	if b.ISBN13 == "" && b.ISBN10 == "" && b.GoogleBooksID == "" && b.OpenLibraryWorkID == "" {
		return errNoIdentifier
	}
	switch b.Format {
	case types.FormatPhysical, types.FormatEBook, types.FormatAudio:
	default:
		return fmt.Errorf("unknown format %q", b.Format)
	}
	if b.PublicationYear != 0 {
		if maxYear := time.Now().Year(); b.PublicationYear < minPublicationYear || b.PublicationYear > maxYear {
			return fmt.Errorf("publication year %d outside [%d, %d]", b.PublicationYear, minPublicationYear, maxYear)
		}
	}
	if b.PageCount < 0 {
		return fmt.Errorf("negative page count %d", b.PageCount)
	}
	if b.AvgRating != nil && (*b.AvgRating < 0 || *b.AvgRating > 5) {
		return fmt.Errorf("rating %.2f outside [0, 5]", *b.AvgRating)
	}
	if b.RatingsCount != nil && *b.RatingsCount < 0 {
		return fmt.Errorf("negative ratings count %d", *b.RatingsCount)
	}
	if b.DurationMinutes < 0 {
		return fmt.Errorf("negative duration %d", b.DurationMinutes)
	}
	for _, obs := range b.Prices {
		if obs.ListAmount != nil && *obs.ListAmount < 0 {
			return fmt.Errorf("negative list price %.2f (%s)", *obs.ListAmount, obs.Country)
		}
		if obs.RetailAmount != nil && *obs.RetailAmount < 0 {
			return fmt.Errorf("negative retail price %.2f (%s)", *obs.RetailAmount, obs.Country)
		}
	}
	return nil
}
