package dashboard

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"delupo-stats/pkg/calendar"
	"delupo-stats/pkg/models"
	"delupo-stats/pkg/source"
)

// DefaultTimezone est le fuseau des périodes quand les filtres n'en donnent pas.
const DefaultTimezone = "America/Sao_Paulo"

// Filters sont les filtres communs aux vues. Start et End sont inclus.
type Filters struct {
	Start     string `json:"start" validate:"required,datetime=2006-01-02"`
	End       string `json:"end" validate:"required,datetime=2006-01-02"`
	GroupBy   string `json:"groupBy" validate:"omitempty,oneof=day week month"`
	Status    string `json:"status" validate:"omitempty,max=64"`
	UTMSource string `json:"utmSource" validate:"omitempty,max=128"`
	Timezone  string `json:"timezone" validate:"omitempty,timezone"`
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// ErrInvalidFilters enveloppe toutes les erreurs de Validate.
var ErrInvalidFilters = errors.New("filtres invalides")

// Validate vérifie formats et bornes ; End ne peut précéder Start.
func (f Filters) Validate() error {
	if err := getValidator().Struct(f); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s (%s)", fe.Field(), fe.Tag()))
			}
			return fmt.Errorf("%w: %s", ErrInvalidFilters, strings.Join(msgs, ", "))
		}
		return fmt.Errorf("%w: %v", ErrInvalidFilters, err)
	}
	// même format : l'ordre lexical est l'ordre chronologique
	if f.End < f.Start {
		return fmt.Errorf("%w: end %s < start %s", ErrInvalidFilters, f.End, f.Start)
	}
	return nil
}

// Granularity renvoie le groupBy effectif (day par défaut).
func (f Filters) Granularity() models.Granularity {
	return models.ParseGranularity(f.GroupBy)
}

// Location charge le fuseau des filtres ; UTC si illisible.
func (f Filters) Location() *time.Location {
	tz := f.Timezone
	if tz == "" {
		tz = DefaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return time.UTC
	}
	return loc
}

// base : start, end, timezone. Les vues ajoutent leurs propres paramètres.
func (f Filters) base() source.Params {
	tz := f.Timezone
	if tz == "" {
		tz = DefaultTimezone
	}
	return source.Params{"start": f.Start, "end": f.End, "timezone": tz}
}

// query : base + status, groupBy, utmSource (graphique des commandes).
func (f Filters) query() source.Params {
	p := f.base()
	p["status"] = f.Status
	p["groupBy"] = string(f.Granularity())
	p["utmSource"] = f.UTMSource
	return p
}

// Window construit des filtres sur les n derniers jours (ou mois) jusqu'à now inclus.
func Window(now time.Time, days, months int, loc *time.Location) Filters {
	if loc == nil {
		loc = time.UTC
	}
	end := now.In(loc)
	start := end.AddDate(0, -months, -days)
	return Filters{
		Start:    start.Format(calendar.KeyLayout),
		End:      end.Format(calendar.KeyLayout),
		Timezone: loc.String(),
	}
}

// MonthWindow construit des filtres couvrant les mois "MMYYYY" from à to inclus.
// Un mois vide prend la valeur de l'autre.
func MonthWindow(from, to string, loc *time.Location) (Filters, error) {
	if loc == nil {
		loc = time.UTC
	}
	if from == "" {
		from = to
	}
	if to == "" {
		to = from
	}
	first, err := calendar.ParseMonth(from, loc)
	if err != nil {
		return Filters{}, fmt.Errorf("%w: mois de début %q: %v", ErrInvalidFilters, from, err)
	}
	last, err := calendar.ParseMonth(to, loc)
	if err != nil {
		return Filters{}, fmt.Errorf("%w: mois de fin %q: %v", ErrInvalidFilters, to, err)
	}
	if last.Before(first) {
		return Filters{}, fmt.Errorf("%w: %s après %s", ErrInvalidFilters, calendar.FormatMonth(first), calendar.FormatMonth(last))
	}
	return Filters{
		Start:    first.Format(calendar.KeyLayout),
		End:      last.AddDate(0, 1, -1).Format(calendar.KeyLayout),
		Timezone: loc.String(),
	}, nil
}
