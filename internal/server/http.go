package server

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
	"github.com/karupanerura/arithmetic-evaluator/internal/expression"
	"github.com/karupanerura/arithmetic-evaluator/internal/types"
	"google.golang.org/api/idtoken"
	"google.golang.org/api/option"
)

var basePathRegexp = regexp.MustCompile(`^/v1/evaluations(?:$|[/:])`)

const (
	activeState    = "ACTIVE"
	succeededState = "SUCCEEDED"
	failedState    = "FAILED"
)

type evaluation struct {
	mu   sync.RWMutex
	done chan struct{}

	Name       string    `json:"name"`
	StartTime  time.Time `json:"startTime"`
	EndTime    time.Time `json:"endTime,omitempty"`
	State      string    `json:"state"`
	Expression string    `json:"expression"`
	Result     string    `json:"result,omitempty"`
	Error      any       `json:"error,omitempty"`
}

type Config struct {
	// Audience enables Google ID token authentication when it is not empty.
	Audience string
	// ValidatorOptions are passed to idtoken.NewValidator.
	ValidatorOptions []option.ClientOption
	ParseOptions     []expression.ParseOption
}

// TokenValidator is satisfied by *idtoken.Validator.
type TokenValidator interface {
	Validate(ctx context.Context, idToken string, audience string) (*idtoken.Payload, error)
}

type httpHandler struct {
	config      Config
	validator   TokenValidator
	idBase      uint64
	evaluations sync.Map
}

func (h *httpHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !basePathRegexp.MatchString(r.URL.Path) {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}
	if h.config.Audience != "" && !h.authorize(r) {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	switch path := strings.TrimSuffix(r.URL.Path, "/"); path {
	case "/v1/evaluations":
		switch r.Method {
		case http.MethodGet:
			h.listEvaluations(w, r)
			return

		case http.MethodPost:
			h.createEvaluation(w, r, false)
			return

		default:
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
			return
		}

	case "/v1/evaluations:evaluate":
		if r.Method == http.MethodPost {
			h.createEvaluation(w, r, true)
			return
		}
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return

	default:
		evaluationID := path[strings.LastIndexByte(path, '/')+1:]
		if !strings.HasPrefix(path, "/v1/evaluations/") || strings.ContainsAny(evaluationID, ":/") || evaluationID == "" {
			http.Error(w, "Not Found", http.StatusNotFound)
			return
		}

		switch r.Method {
		case http.MethodGet:
			h.getEvaluation(w, r, evaluationID)
			return

		default:
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
			return
		}
	}
}

func (h *httpHandler) authorize(r *http.Request) bool {
	authorization := r.Header.Get("Authorization")
	if !strings.HasPrefix(authorization, "Bearer ") {
		return false
	}

	if _, err := h.validator.Validate(r.Context(), strings.TrimPrefix(authorization, "Bearer "), h.config.Audience); err != nil {
		log.Printf("failed to validate ID token: %v", err)
		return false
	}
	return true
}

func (h *httpHandler) createEvaluation(w http.ResponseWriter, r *http.Request, wait bool) {
	defer r.Body.Close()

	var req struct {
		Expression string `json:"expression"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("failed to decode request body: %v", err)
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	id := fmt.Sprintf("00000000-0000-0000-0000-%012x", atomic.AddUint64(&h.idBase, 1))
	ev := &evaluation{
		done:       make(chan struct{}),
		Name:       "/v1/evaluations/" + id,
		StartTime:  time.Now().UTC(),
		State:      activeState,
		Expression: req.Expression,
	}
	h.evaluations.Store(id, ev)
	go h.evaluate(ev)

	if !wait {
		ev.mu.RLock()
		defer ev.mu.RUnlock()
		resJSON(w, http.StatusOK, ev)
		return
	}

	select {
	case <-ev.done:
	case <-r.Context().Done():
		return
	}

	ev.mu.RLock()
	defer ev.mu.RUnlock()
	status := http.StatusOK
	if ev.State == failedState {
		status = http.StatusUnprocessableEntity
	}
	resJSON(w, status, ev)
}

func (h *httpHandler) evaluate(ev *evaluation) {
	defer close(ev.done)

	ret, err := expression.EvaluateString(ev.Expression, h.config.ParseOptions...)

	ev.mu.Lock()
	defer ev.mu.Unlock()
	ev.EndTime = time.Now().UTC()
	if err != nil {
		ev.State = failedState
		ev.Error = types.NewExceptionByError(err).Exception()
		return
	}

	ev.State = succeededState
	ev.Result = strconv.FormatFloat(ret, 'f', -1, 64)
}

func (h *httpHandler) listEvaluations(w http.ResponseWriter, r *http.Request) {
	results := []*evaluation{}
	h.evaluations.Range(func(key, value any) bool {
		results = append(results, value.(*evaluation))
		return true
	})
	for _, ev := range results {
		ev.mu.RLock()
	}
	defer func() {
		for _, ev := range results {
			ev.mu.RUnlock()
		}
	}()
	sort.Slice(results, func(i, j int) bool {
		return results[i].StartTime.Before(results[j].StartTime)
	})

	resJSON(w, http.StatusOK, map[string][]*evaluation{"evaluations": results})
}

func (h *httpHandler) getEvaluation(w http.ResponseWriter, r *http.Request, id string) {
	ret, ok := h.evaluations.Load(id)
	if !ok {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}
	ev := ret.(*evaluation)

	ev.mu.RLock()
	defer ev.mu.RUnlock()
	resJSON(w, http.StatusOK, ev)
}

// NewHTTPHandler returns the evaluation API. When config.Audience is set it
// builds a Google ID token validator, or uses validator if it is not nil.
func NewHTTPHandler(ctx context.Context, config Config, validator TokenValidator) (http.Handler, error) {
	h := &httpHandler{config: config, validator: validator}
	if config.Audience != "" && validator == nil {
		v, err := idtoken.NewValidator(ctx, config.ValidatorOptions...)
		if err != nil {
			return nil, fmt.Errorf("idtoken.NewValidator: %w", err)
		}
		h.validator = v
	}
	return h, nil
}

func resJSON(w http.ResponseWriter, status int, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("json.MarshalIndent: %w", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Length", strconv.Itoa(len(b)+1))
	w.WriteHeader(status)

	if _, err = w.Write(b); err != nil {
		return fmt.Errorf("w.Write: %w", err)
	}
	if _, err = io.WriteString(w, "\n"); err != nil {
		return fmt.Errorf("io.WriteString: %w", err)
	}
	return nil
}
