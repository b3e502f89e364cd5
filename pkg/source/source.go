// Package source récupère les payloads bruts des endpoints de métriques.
package source

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"

	"delupo-stats/pkg/models"
)

// Endpoint est le nom d'un endpoint /metrics/<endpoint>.
type Endpoint string

const (
	Summary        Endpoint = "summary"
	Orders         Endpoint = "orders"
	Products       Endpoint = "products"
	Customers      Endpoint = "customers"
	UTM            Endpoint = "utm"
	Coupons        Endpoint = "coupons"
	Promotions     Endpoint = "promotions"
	Shipping       Endpoint = "shipping"
	Payments       Endpoint = "payments"
	Retention      Endpoint = "retention"
	Cohort         Endpoint = "cohort"
	NewVsReturning Endpoint = "new-vs-returning"
)

// Path renvoie le chemin HTTP de l'endpoint.
func (e Endpoint) Path() string {
	return "/metrics/" + string(e)
}

// Params sont les paramètres de requête ; les valeurs vides ne sont pas transmises.
type Params map[string]string

// With renvoie une copie complétée de p.
func (p Params) With(key, value string) Params {
	out := make(Params, len(p)+1)
	for k, v := range p {
		out[k] = v
	}
	out[key] = value
	return out
}

// Values encode les paramètres non vides.
func (p Params) Values() url.Values {
	v := url.Values{}
	for key, value := range p {
		if value != "" {
			v.Set(key, value)
		}
	}
	return v
}

// Key est une forme canonique (clés triées) utilisable comme clé de cache.
func (p Params) Key() string {
	keys := make([]string, 0, len(p))
	for k, v := range p {
		if v != "" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	v := url.Values{}
	for _, k := range keys {
		v.Set(k, p[k])
	}
	return v.Encode()
}

// Source fournit le payload d'un endpoint. Un payload nil signifie "aucune donnée".
type Source interface {
	Fetch(ctx context.Context, endpoint Endpoint, params Params) (models.RawPayload, error)
}

// ErrUnsupported : la source ne sait pas servir cet endpoint.
var ErrUnsupported = errors.New("endpoint non supporté par la source")

// StatusError est renvoyée pour une réponse HTTP hors 2xx.
type StatusError struct {
	Endpoint Endpoint
	Code     int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("API error %d (%s)", e.Code, e.Endpoint.Path())
}

// Fallback interroge Primary puis, si l'endpoint n'y est pas supporté, Secondary.
type Fallback struct {
	Primary   Source
	Secondary Source
}

func (f Fallback) Fetch(ctx context.Context, endpoint Endpoint, params Params) (models.RawPayload, error) {
	p, err := f.Primary.Fetch(ctx, endpoint, params)
	if errors.Is(err, ErrUnsupported) && f.Secondary != nil {
		return f.Secondary.Fetch(ctx, endpoint, params)
	}
	return p, err
}
