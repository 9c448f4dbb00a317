package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/farcdigger/Payx402/internal/chain"
	"github.com/farcdigger/Payx402/internal/config"
	"github.com/farcdigger/Payx402/internal/ledger"
	"github.com/farcdigger/Payx402/internal/middleware"
	"github.com/farcdigger/Payx402/internal/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ledgerStub 模拟 Supabase payments 集合的最小行为：
// POST 追加（交易哈希撞库返回 409），GET 按 eq. 过滤、按 created_at 倒序
type ledgerStub struct {
	mu       sync.Mutex
	payments []models.Payment
	failAll  bool
	srv      *httptest.Server
}

func newLedgerStub() *ledgerStub {
	s := &ledgerStub{}
	s.srv = httptest.NewServer(http.HandlerFunc(s.handle))
	return s
}

func (s *ledgerStub) handle(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failAll {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	switch r.Method {
	case http.MethodPost:
		var p models.Payment
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if p.TransactionHash != "" {
			for _, existing := range s.payments {
				if existing.TransactionHash == p.TransactionHash {
					w.WriteHeader(http.StatusConflict)
					return
				}
			}
		}
		s.payments = append(s.payments, p)
		w.WriteHeader(http.StatusCreated)

	case http.MethodGet:
		q := r.URL.Query()
		rows := []models.Payment{}
		for _, p := range s.payments {
			if hash := q.Get("transaction_hash"); hash != "" && "eq."+p.TransactionHash != hash {
				continue
			}
			if wallet := q.Get("wallet_address"); wallet != "" && "eq."+p.WalletAddress != wallet {
				continue
			}
			rows = append(rows, p)
		}
		if q.Get("order") == "created_at.desc" {
			sort.SliceStable(rows, func(i, j int) bool {
				return rows[i].CreatedAt > rows[j].CreatedAt
			})
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(rows)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *ledgerStub) Close() { s.srv.Close() }

func (s *ledgerStub) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.payments)
}

// chainStub 固定响应的 tokentx 接口
func chainStub(body string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
}

func testConfig(ledgerURL, chainURL string) *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Port: 3000},
		Chain: config.ChainConfig{
			APIURL:         chainURL,
			APIKey:         "test-key",
			ChainID:        8453,
			USDCContract:   "0xUSDC",
			ReceiveAddress: "0xMonitored",
			MinAmount:      0.01,
		},
		Ledger: config.LedgerConfig{URL: ledgerURL, APIKey: "test-key"},
		Paywall: config.PaywallConfig{
			FacilitatorURL: "http://facilitator.invalid",
			PayTo:          "0xda8d766bc482a7953b72283f56c12ce00da6a86a",
			Network:        "base",
			Disabled:       true,
		},
	}
}

func newTestRouter(cfg *config.Config) *gin.Engine {
	logger := zap.NewNop()
	h := New(cfg, ledger.NewClient(cfg.Ledger, logger), chain.NewClient(cfg.Chain, logger), logger)
	r := gin.New()
	r.Use(middleware.RequestID())
	h.RegisterRoutes(r)
	InitStartTime()
	return r
}

func doJSON(r *gin.Engine, method, path, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	req := httptest.NewRequest(method, path, nil)
	if body != "" {
		req = httptest.NewRequest(method, path, jsonBody(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var payload map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &payload)
	return w, payload
}

func jsonBody(s string) io.Reader {
	return strings.NewReader(s)
}
