// Package dashboard assemble les vues du tableau de bord : commandes, clients, produits, rétention.
//
// Chaque vue récupère ses payloads en parallèle puis applique les transformations pures de
// payload, calendar et calculator. Un payload en échec est traité comme absent.
package dashboard

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"delupo-stats/pkg/logging"
	"delupo-stats/pkg/models"
	"delupo-stats/pkg/source"
)

// Options règle les classements et les objectifs de part.
type Options struct {
	TopCustomers    int
	TopProducts     int
	NewTarget       float64
	ReturningTarget float64
	// Concurrency borne les requêtes simultanées (4 par défaut).
	Concurrency int
	// Progress est appelé après chaque requête terminée, réussie ou non.
	Progress func(source.Endpoint)
}

// DefaultOptions : 10 clients, 20 produits, objectifs 20 %.
func DefaultOptions() Options {
	return Options{TopCustomers: 10, TopProducts: 20, NewTarget: 0.2, ReturningTarget: 0.2, Concurrency: 4}
}

type Dashboard struct {
	src  source.Source
	opts Options
}

func New(src source.Source, opts Options) *Dashboard {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 4
	}
	return &Dashboard{src: src, opts: opts}
}

// request : un payload nommé d'une vue (summary est demandé deux fois avec des statuts différents).
type request struct {
	name     string
	endpoint source.Endpoint
	params   source.Params
}

// Requests renvoie le nombre de requêtes d'une vue (barre de progression).
func Requests(view string) int {
	switch view {
	case "orders":
		return 5
	case "products":
		return 2
	case "clients":
		return 1
	case "retention":
		return 3
	}
	return 0
}

// fetch lance les requêtes en parallèle. Seule l'annulation du contexte est une erreur.
func (d *Dashboard) fetch(ctx context.Context, reqs []request) (map[string]models.RawPayload, error) {
	log := logging.With("dashboard")

	var mu sync.Mutex
	out := make(map[string]models.RawPayload, len(reqs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.opts.Concurrency)
	for _, r := range reqs {
		g.Go(func() error {
			p, err := d.src.Fetch(gctx, r.endpoint, r.params)
			if d.opts.Progress != nil {
				d.opts.Progress(r.endpoint)
			}
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				log.Warn().Err(err).Str("endpoint", string(r.endpoint)).Str("panel", r.name).Msg("payload indisponible")
				return nil
			}
			mu.Lock()
			out[r.name] = p
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
