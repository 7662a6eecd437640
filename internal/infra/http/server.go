package http

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/csera5/BlockchainTech/internal/config"
	"github.com/csera5/BlockchainTech/internal/domain"
	"github.com/csera5/BlockchainTech/internal/infra/chain"
	"github.com/csera5/BlockchainTech/internal/infra/chain/cardano"
	"github.com/csera5/BlockchainTech/internal/infra/db"
	"github.com/csera5/BlockchainTech/internal/infra/events"
	"github.com/csera5/BlockchainTech/internal/infra/exifmeta"
	"github.com/csera5/BlockchainTech/internal/infra/image"
	"github.com/csera5/BlockchainTech/internal/infra/indexmem"
	"github.com/csera5/BlockchainTech/internal/infra/policy"
	"github.com/csera5/BlockchainTech/internal/infra/ratelimit"
	"github.com/csera5/BlockchainTech/internal/infra/storage/miniocas"
	"github.com/csera5/BlockchainTech/internal/infra/storage/pinata"
	"github.com/csera5/BlockchainTech/internal/usecase"

	"github.com/gin-gonic/gin"
)

type Server struct {
	cfg   config.Config
	store *db.Store
	r     *gin.Engine

	certifyUC *usecase.CertifyImage
	verifyUC  *usecase.VerifyImage
	index     usecase.RecordIndex
	status    *usecase.StatusTracker
	events    *events.Publisher

	initErr error

	rateLimiter       domain.RateLimiter
	rateLimitRequests int
	rateLimitWindow   time.Duration
}

func NewServer(cfg config.Config, store *db.Store) *Server {
	r := gin.New()
	r.Use(gin.Recovery())

	s := &Server{cfg: cfg, store: store, r: r}
	s.initDeps()
	s.routes()
	return s
}

type ServerDeps struct {
	Certify     *usecase.CertifyImage
	Verify      *usecase.VerifyImage
	Index       usecase.RecordIndex
	Status      *usecase.StatusTracker
	RateLimiter domain.RateLimiter
}

func NewServerWithDeps(cfg config.Config, deps ServerDeps) *Server {
	r := gin.New()
	r.Use(gin.Recovery())

	s := &Server{
		cfg:       cfg,
		r:         r,
		certifyUC: deps.Certify,
		verifyUC:  deps.Verify,
		index:     deps.Index,
		status:    deps.Status,
	}
	if s.index == nil && s.verifyUC != nil {
		s.index = s.verifyUC.Index
	}
	if s.status == nil {
		s.status = usecase.NewStatusTracker(cfg.StatusMaxAge)
	}
	s.initRateLimit(deps.RateLimiter)
	s.routes()
	return s
}

func (s *Server) initDeps() {
	normalizer := image.NewNormalizer(s.cfg.CanonicalWidth, s.cfg.CanonicalHeight, s.cfg.WorkDir)
	extractor := exifmeta.New()

	var index usecase.RecordIndex
	if s.store != nil && s.store.DB != nil {
		index = db.NewCertificationRepository(s.store.DB)
	} else {
		index = indexmem.New()
	}
	s.index = index

	var publisher domain.Publisher
	switch s.cfg.StorageBackend {
	case "s3":
		p, err := miniocas.NewPublisher(s.cfg.S3Endpoint, s.cfg.S3AccessKey, s.cfg.S3SecretKey, s.cfg.S3Bucket, s.cfg.S3UseSSL)
		if err != nil {
			s.initErr = err
			return
		}
		publisher = p
	default:
		p, err := pinata.NewClient(s.cfg.PinataBaseURL, s.cfg.PinataAPIKey, s.cfg.PinataSecretKey, nil)
		if err != nil {
			s.initErr = err
			return
		}
		publisher = p
	}

	key, err := cardano.LoadSigningKey(s.cfg.SigningKeyBech32, s.cfg.SigningKeyFile)
	if err != nil {
		s.initErr = err
		return
	}
	bf, err := cardano.NewClient(s.cfg.BlockfrostBaseURL, s.cfg.BlockfrostAPIKey, nil)
	if err != nil {
		s.initErr = err
		return
	}
	wallet, err := cardano.NewWallet(key, s.cfg.CardanoNetwork == "mainnet", bf, s.cfg.TxTTLSlots)
	if err != nil {
		s.initErr = err
		return
	}
	certifier, err := chain.NewCertifier(wallet, s.cfg.PolicyID, s.cfg.AssetName, s.cfg.PaymentLovelace)
	if err != nil {
		s.initErr = err
		return
	}

	var engine domain.PolicyEngine
	if s.cfg.AdmissionPolicyPath != "" {
		e, err := policy.NewEngineFromPath(context.Background(), s.cfg.AdmissionPolicyPath)
		if err != nil {
			s.initErr = err
			return
		}
		engine = e
	}

	s.status = usecase.NewStatusTracker(s.cfg.StatusMaxAge)
	sinks := []usecase.ProgressSink{s.status}
	if s.cfg.NATSURL != "" {
		pub, err := events.NewPublisher(s.cfg.NATSURL, s.cfg.NATSSubject)
		if err != nil {
			log.Printf("nats publisher disabled: %v", err)
		} else {
			s.events = pub
			sinks = append(sinks, pub)
		}
	}

	s.certifyUC = &usecase.CertifyImage{
		Normalizer:     normalizer,
		Extractor:      extractor,
		Publisher:      publisher,
		Index:          index,
		Certifier:      certifier,
		Policy:         engine,
		Sinks:          sinks,
		AllowRecertify: s.cfg.AllowRecertify,
	}
	s.verifyUC = &usecase.VerifyImage{
		Normalizer: normalizer,
		Index:      index,
	}

	s.initRateLimit(nil)
}

func (s *Server) initRateLimit(override domain.RateLimiter) {
	if override != nil {
		s.rateLimiter = override
	}
	if s.rateLimiter == nil && s.cfg.RateLimitRequests > 0 {
		if s.cfg.RedisAddr != "" {
			if limiter, err := ratelimit.NewRedisLimiter(s.cfg.RedisAddr, s.cfg.RedisPassword, s.cfg.RedisDB, nil); err == nil {
				s.rateLimiter = limiter
			}
		}
		if s.rateLimiter == nil {
			s.rateLimiter = ratelimit.NewMemoryLimiter(ratelimit.MemoryLimiterConfig{
				MaxKeys: s.cfg.RateLimitMaxKeys,
			})
		}
	}
	s.rateLimitRequests = s.cfg.RateLimitRequests
	if s.cfg.RateLimitWindowSeconds > 0 {
		s.rateLimitWindow = time.Duration(s.cfg.RateLimitWindowSeconds) * time.Second
	}
}

func (s *Server) routes() {
	s.r.GET("/healthz", func(c *gin.Context) {
		dbMode := "no-db"
		if s.store != nil && s.store.DB != nil {
			dbMode = "db"
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "mode": dbMode})
	})

	v1 := s.r.Group("/v1")
	{
		v1.POST("/certifications", s.handleCertify)
		v1.GET("/certifications/:request_id", s.handleCertificationStatus)
		v1.POST("/verifications", s.handleVerify)
		v1.GET("/records/:fingerprint", s.handleGetRecord)
	}

	s.r.NoRoute(s.handleNoRoute)
}

func (s *Server) Run() error {
	if s.initErr != nil {
		return s.initErr
	}
	defer func() {
		if s.events != nil {
			s.events.Close()
		}
	}()
	return s.r.Run(s.cfg.HTTPAddr)
}
