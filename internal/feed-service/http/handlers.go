package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/radieske/value-bet-feed/internal/feed"
	"github.com/radieske/value-bet-feed/internal/feed-service/controller"
	"github.com/radieske/value-bet-feed/internal/feed-service/dto"
	"github.com/radieske/value-bet-feed/internal/feed-service/store"
	"github.com/radieske/value-bet-feed/pkg/contracts/events"
)

// viewFromQuery lê ?sport=&q=&sort=&expanded= (valores inválidos caem no padrão)
func viewFromQuery(q url.Values) feed.ViewState {
	return feed.ViewState{
		Sport:    feed.ParseSportFilter(q.Get("sport")),
		Search:   q.Get("q"),
		Sort:     feed.ParseSortKey(q.Get("sort")),
		Expanded: strings.ToLower(q.Get("expanded")),
	}
}

func (a *API) newID() string {
	if a.NewID != nil {
		return a.NewID()
	}
	return uuid.NewString()
}

func (a *API) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

func statusOf(st store.State) dto.FeedStatus {
	s := dto.FeedStatus{
		Lifecycle:     string(st.Feed.Lifecycle),
		Loaded:        st.Feed.Loaded(),
		ErrorMessage:  st.Feed.ErrorMessage,
		Generation:    st.Feed.Generation,
		Opportunities: len(st.Feed.Opportunities),
		Multiples:     len(st.Feed.Multiples),
	}
	if s.Loaded {
		t := st.Feed.LastUpdatedAt
		s.LastUpdatedAt = &t
	}
	return s
}

// getFeed devolve o modelo renderizado para a visão da requisição
func (a *API) getFeed(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.Store.ViewAs(viewFromQuery(r.URL.Query()), a.now()))
}

func (a *API) getState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, statusOf(a.Store.State()))
}

// refresh executa uma busca; em falha os dados anteriores continuam no feed
func (a *API) refresh(w http.ResponseWriter, r *http.Request) {
	st, err := a.Controller.Reload(r.Context())
	switch {
	case err == nil, errors.Is(err, controller.ErrSuperseded):
		writeJSON(w, http.StatusOK, statusOf(st))
	default:
		a.Log.Warn("refresh failed", zap.Error(err))
		writeJSON(w, http.StatusBadGateway, statusOf(st))
	}
}

// exportByIndex resolve o índice contra a lista exibida na visão da query
func (a *API) exportByIndex(w http.ResponseWriter, r *http.Request) {
	idx, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid index")
		return
	}
	rm := a.Store.ViewAs(viewFromQuery(r.URL.Query()), a.now())
	if idx < 0 || idx >= len(rm.Items) {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	writeJSON(w, http.StatusOK, feed.DetailOf(rm.Items[idx]))
}

// exportByKey gera a linha da oportunidade e publica bet_exported.
// Falha ao publicar não impede a resposta: o usuário ainda recebe a linha.
func (a *API) exportByKey(w http.ResponseWriter, r *http.Request) {
	var req dto.ExportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Key) == "" {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	opps := a.Store.State().Feed.Opportunities
	i := feed.IndexOf(opps, strings.ToLower(req.Key))
	if i < 0 {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	o := opps[i]

	ev := events.BetExported{
		ExportID:    a.newID(),
		Key:         o.Ident(),
		Match:       o.Match,
		Competition: o.Competition,
		Market:      o.Market,
		Bookmaker:   o.Bookmaker,
		Odds:        o.Odds,
		EV:          o.EV,
		Stake:       o.Stake,
		Line:        feed.FormatExportLine(o),
		Ts:          a.now(),
	}
	res := dto.ExportResponse{ExportID: ev.ExportID, Line: ev.Line}

	outcome := "unjournaled"
	if a.Publisher != nil {
		if err := a.Publisher.PublishBetExported(r.Context(), ev); err != nil {
			a.Log.Warn("bet exported publish failed", zap.String("export_id", ev.ExportID), zap.Error(err))
			outcome = "journal_failed"
		} else {
			res.Journaled = true
			outcome = "journaled"
		}
	}
	if a.OnExport != nil {
		a.OnExport(outcome)
	}
	writeJSON(w, http.StatusOK, res)
}

func (a *API) listExports(w http.ResponseWriter, r *http.Request) {
	if a.Exports == nil {
		writeError(w, http.StatusServiceUnavailable, "export journal disabled")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	out, err := a.Exports.RecentExports(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, out)
}
