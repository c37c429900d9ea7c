package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"tone-drift/internal/domain"
	"tone-drift/internal/llm"
	"tone-drift/internal/repository"
	"tone-drift/internal/service"
	"tone-drift/internal/slack"
)

type mockSignatureRepo struct {
	mu    sync.Mutex
	items map[string]domain.ToneSignature
}

func newMockSignatureRepo() *mockSignatureRepo {
	return &mockSignatureRepo{items: map[string]domain.ToneSignature{}}
}

func (m *mockSignatureRepo) GetByBrand(_ context.Context, brandID string) (domain.ToneSignature, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sig, ok := m.items[brandID]
	if !ok {
		return domain.ToneSignature{}, pgx.ErrNoRows
	}
	return sig, nil
}

func (m *mockSignatureRepo) ListBrandIDs(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.items))
	for id := range m.items {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (m *mockSignatureRepo) ListAll(_ context.Context) ([]domain.ToneSignature, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.ToneSignature, 0, len(m.items))
	for _, s := range m.items {
		out = append(out, s)
	}
	return out, nil
}

func (m *mockSignatureRepo) Upsert(_ context.Context, sig domain.ToneSignature) (domain.ToneSignature, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[sig.BrandID] = sig
	return sig, nil
}

func (m *mockSignatureRepo) NearestByMetrics(context.Context, domain.TextMetrics, int) ([]domain.ToneSignature, error) {
	return nil, nil
}

type mockEvaluationRepo struct {
	mu    sync.Mutex
	items []domain.Evaluation
}

func (m *mockEvaluationRepo) Append(_ context.Context, ev domain.Evaluation) (domain.Evaluation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = append(m.items, ev)
	return ev, nil
}

func (m *mockEvaluationRepo) ListByBrand(_ context.Context, brandID string) ([]domain.Evaluation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Evaluation
	for _, ev := range m.items {
		if ev.BrandID == brandID {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (m *mockEvaluationRepo) GetByID(_ context.Context, id string) (domain.Evaluation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ev := range m.items {
		if ev.ID == id {
			return ev, nil
		}
	}
	return domain.Evaluation{}, pgx.ErrNoRows
}

func (m *mockEvaluationRepo) Search(_ context.Context, f repository.EvaluationFilter) ([]domain.Evaluation, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Evaluation
	for _, ev := range m.items {
		if f.BrandID != "" && ev.BrandID != f.BrandID {
			continue
		}
		if f.From != nil && ev.CreatedAt.Before(*f.From) {
			continue
		}
		out = append(out, ev)
	}
	return out, len(out), nil
}

type mockFeedbackRepo struct {
	items []domain.Feedback
}

func (m *mockFeedbackRepo) Create(_ context.Context, f domain.Feedback) (domain.Feedback, error) {
	m.items = append(m.items, f)
	return f, nil
}

func (m *mockFeedbackRepo) Summary(_ context.Context, evaluationID string) (domain.FeedbackSummary, error) {
	out := domain.FeedbackSummary{EvaluationID: evaluationID}
	for _, f := range m.items {
		if f.EvaluationID == evaluationID {
			if f.Helpful {
				out.Helpful++
			} else {
				out.NotHelpful++
			}
		}
	}
	return out, nil
}

type mockRejectionRepo struct {
	items []domain.Rejection
}

func (m *mockRejectionRepo) Append(_ context.Context, rej domain.Rejection) (domain.Rejection, error) {
	m.items = append(m.items, rej)
	return rej, nil
}

func (m *mockRejectionRepo) List(_ context.Context, brandID string) ([]domain.Rejection, error) {
	var out []domain.Rejection
	for _, r := range m.items {
		if brandID == "" || r.BrandID == brandID {
			out = append(out, r)
		}
	}
	return out, nil
}

type mockResponder struct {
	mu      sync.Mutex
	urls    []string
	replies []slack.Message
}

func (m *mockResponder) Respond(_ context.Context, responseURL string, msg slack.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.urls = append(m.urls, responseURL)
	m.replies = append(m.replies, msg)
	return nil
}

func (m *mockResponder) last() slack.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.replies) == 0 {
		return slack.Message{}
	}
	return m.replies[len(m.replies)-1]
}

type testServer struct {
	router     *gin.Engine
	oracle     *llm.MockClient
	signatures *mockSignatureRepo
	evals      *mockEvaluationRepo
	rejections *mockRejectionRepo
	approvals  *service.ApprovalService
	responder  *mockResponder
}

func newTestServer(signingSecret string, runner retuneRunner) *testServer {
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()

	ts := &testServer{
		oracle:     &llm.MockClient{},
		signatures: newMockSignatureRepo(),
		evals:      &mockEvaluationRepo{},
		rejections: &mockRejectionRepo{},
		responder:  &mockResponder{},
	}
	toneSvc := service.NewToneService(ts.oracle, ts.signatures, ts.evals, time.Second, logger)
	insightsSvc := service.NewInsightsService(ts.evals, &mockFeedbackRepo{}, ts.signatures, ts.rejections, logger)
	ts.approvals = service.NewApprovalService(
		service.NewProposalTokenService("approval-secret", time.Hour),
		service.NewMemoryProposalStore(),
		service.NewMemoryPendingRejectionStore(),
		toneSvc,
		ts.rejections,
		time.Minute,
		logger,
	)

	var retuneH *RetuneHandler
	if runner != nil {
		retuneH = NewRetuneHandler(logger, runner)
	}
	ts.router = NewRouter(
		logger,
		NewToneHandler(logger, toneSvc),
		NewEvaluationHandler(logger, toneSvc, insightsSvc, ts.approvals),
		NewSlackHandler(logger, ts.approvals, ts.responder, signingSecret),
		retuneH,
	)
	return ts
}

func (ts *testServer) seedSignature(brandID string) domain.ToneSignature {
	sig := domain.ToneSignature{
		ID:        "sig-" + brandID,
		BrandID:   brandID,
		Traits:    domain.ToneTraits{Tone: "Formal", LanguageStyle: "Precise", Formality: "High", FormsOfAddress: "we", EmotionalAppeal: "Trust"},
		CreatedAt: time.Now().UTC(),
	}
	ts.signatures.items[brandID] = sig
	return sig
}

func performRequest(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var payload []byte
	if body != nil {
		payload, _ = json.Marshal(body)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func performForm(r http.Handler, path string, form url.Values, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decodeBody(rec *httptest.ResponseRecorder, out any) error {
	return json.Unmarshal(rec.Body.Bytes(), out)
}
