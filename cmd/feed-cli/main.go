// Command feed-cli busca as oportunidades no backend e imprime o feed no terminal.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/value-bet-feed/internal/feed"
	"github.com/radieske/value-bet-feed/internal/feed-cli/render"
	"github.com/radieske/value-bet-feed/internal/feed-cli/watch"
	"github.com/radieske/value-bet-feed/internal/feed-service/backend"
	"github.com/radieske/value-bet-feed/internal/feed-service/clipboard"
	"github.com/radieske/value-bet-feed/internal/feed-service/controller"
	"github.com/radieske/value-bet-feed/internal/feed-service/store"
	"github.com/radieske/value-bet-feed/internal/feed-service/ws"
	"github.com/radieske/value-bet-feed/internal/shared/config"
	"github.com/radieske/value-bet-feed/internal/shared/logger"
)

func main() {
	cfg := config.Load()

	backendURL := flag.String("backend", cfg.BackendURL, "URL do backend de análise")
	bankroll := flag.Float64("bankroll", cfg.Bankroll, "banca enviada ao backend")
	timeout := flag.Duration("timeout", cfg.FetchTimeout, "timeout da busca")
	sport := flag.String("sport", "all", "filtro de esporte: all, football, nfl, tennis")
	query := flag.String("q", "", "busca por jogo, competição ou mercado")
	sortKey := flag.String("sort", string(feed.SortEVDesc), "ordenação: ev_desc, odds_desc, stake_asc, prob_desc")
	expand := flag.Int("expand", 0, "posição (1..n) do item a expandir na lista exibida")
	copyLine := flag.Bool("copy", false, "copia a linha do item expandido para a área de transferência")
	multiples := flag.Bool("multiples", false, "mostra as apostas múltiplas")
	watchURL := flag.String("watch", "", "acompanha o feed-service (ex.: http://localhost:8090) pelo WebSocket em vez de buscar no backend")
	verbose := flag.Bool("v", false, "logs detalhados em stderr")
	flag.Parse()

	log, err := logger.NewCLI(*verbose)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger init:", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *watchURL != "" {
		runWatch(ctx, log, *watchURL, ws.ClientMsg{Sport: *sport, Q: *query, Sort: *sortKey}, *multiples)
		return
	}

	st := store.New()
	ctl := controller.New(log, st, backend.New(*backendURL, *timeout), *bankroll, *timeout)

	// visão antes da carga: a expansão depende da lista já filtrada
	st.Dispatch(store.SportSelected{Sport: feed.ParseSportFilter(*sport)})
	st.Dispatch(store.SearchChanged{Query: *query})
	st.Dispatch(store.SortSelected{Key: feed.ParseSortKey(*sortKey)})

	_, loadErr := ctl.Load(ctx, store.ModeInitial)
	if loadErr != nil {
		log.Debug("load failed", zap.Error(loadErr))
	}

	if loadErr == nil && *expand > 0 {
		st.Dispatch(store.ExpansionToggled{Index: *expand - 1})
	}

	if *copyLine {
		rm := st.View(time.Now())
		switch {
		case rm.Expanded != nil:
			n := clipboard.NewCopier(clipboard.System{}, log).Copy(ctx, rm.Expanded.Line)
			st.Dispatch(store.NoticeShown{Notice: n})
		case loadErr == nil:
			log.Warn("nothing to copy: use -expand to pick an item")
		}
	}

	if err := render.Write(os.Stdout, st.View(time.Now()), render.Options{Multiples: *multiples}); err != nil {
		log.Error("render failed", zap.Error(err))
		os.Exit(1)
	}

	if loadErr != nil && !errors.Is(loadErr, controller.ErrSuperseded) {
		os.Exit(1)
	}
}

// runWatch redesenha o feed a cada atualização recebida do feed-service
func runWatch(ctx context.Context, log *zap.Logger, url string, view ws.ClientMsg, multiples bool) {
	c := &watch.WSClient{
		URL:  url,
		View: view,
		Log:  log,
		OnUpdate: func(rm feed.RenderModel) {
			fmt.Fprint(os.Stdout, "\033[H\033[2J")
			if err := render.Write(os.Stdout, rm, render.Options{Multiples: multiples}); err != nil {
				log.Warn("render failed", zap.Error(err))
			}
		},
	}
	if err := c.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("watch stopped", zap.Error(err))
		os.Exit(1)
	}
}
