package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"

	"github.com/gobuffalo/packr"
	_ "github.com/joho/godotenv/autoload"
	"github.com/papyri/archive/internal/blob"
	"github.com/papyri/archive/internal/cache"
	"github.com/papyri/archive/internal/compress"
	"github.com/papyri/archive/internal/config"
	"github.com/papyri/archive/internal/jobs"
	"github.com/papyri/archive/internal/queue"
	"github.com/papyri/archive/internal/service"
	"github.com/papyri/archive/internal/store"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"
)

// Server represents the server
type Server struct {
	httpPort string
}

// NewServer creates a new server
func NewServer(httpPort string) *Server {
	return &Server{
		httpPort: httpPort,
	}
}

// Start starts the server
func (s *Server) Start() {
	if err := Start(s.httpPort); err != nil {
		logrus.Fatalf("error starting server: %v", err)
	}
}

// Start builds the full service stack from config and serves the REST API
// until interrupted.
func Start(httpPort string) error {
	httpPort = ":" + httpPort

	cnf := config.LoadConfig()
	db := config.GetDB(cnf)

	listener, err := net.Listen("tcp", httpPort)
	if err != nil {
		return err
	}

	docStore := store.NewGormStore(db)
	if err := docStore.Migrate(); err != nil {
		return err
	}

	docCache := cache.NewRedisDocumentCache(cnf.RedisAddr, compress.FromName(cnf.CacheEncoder))

	var blobs blob.Store
	if cnf.MinioEndpoint != "" {
		minioStore, err := blob.NewMinioStore(cnf.MinioEndpoint, cnf.MinioAccessKey, cnf.MinioSecretKey, cnf.MinioBucket, cnf.MinioSecure)
		if err != nil {
			return err
		}
		if err := minioStore.EnsureBucket(context.Background()); err != nil {
			return err
		}
		blobs = minioStore
	} else {
		logrus.Warn("no object store configured, uploads are kept in memory")
		blobs = blob.NewMemoryStore()
	}

	var events queue.EventQueue
	if cnf.KafkaBrokers != "" {
		kafkaQueue, err := queue.NewKafkaQueue(cnf.KafkaBrokers, cnf.KafkaTopic)
		if err != nil {
			return err
		}
		events = kafkaQueue
	} else {
		events = queue.NewNoop()
	}
	defer events.Close()

	docs := service.NewDocumentService(docStore, blobs, docCache, events)
	moderation := service.NewModerationService(docStore, docs)
	listing := service.NewListingService(docs)

	runner := jobs.NewRunner(jobs.NewLegacySeeder(cnf.SeedSchedule, docStore, docs))
	runner.Start()
	defer runner.Stop()

	api := NewAPI(docs, moderation, listing)

	apiMux := http.NewServeMux()
	openapiDocs := packr.NewBox("../../docs/v1")
	docsPath := "/v1/docs/"
	apiMux.Handle(docsPath, http.StripPrefix(docsPath, http.FileServer(openapiDocs)))
	apiMux.Handle("/", authMiddleware(cnf.JWTSecret, api))

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"}, // All origins are allowed
		AllowedMethods:   []string{"GET", "POST", "DELETE", "PUT"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	restServer := &http.Server{
		Addr:    httpPort,
		Handler: c.Handler(requestTimeMiddleware(apiMux)),
	}

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		logrus.Info("starting rest api on: ", httpPort)
		logrus.Info("click on the following link to view the API documentation: http://localhost", httpPort, "/v1/docs/")
		if err := restServer.Serve(listener); err != nil {
			if !errors.Is(err, http.ErrServerClosed) {
				logrus.Errorf("error starting rest api: %v", err)
			}
		}
		logrus.Infof("rest api stopped")
	}()

	logrus.Infof("Press Ctrl+C to stop the server")

	// listen for interrupt signal to gracefully shut down the server
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, unix.SIGTERM, unix.SIGINT, unix.SIGTSTP)
	<-sigs
	// clean Ctrl+C output
	fmt.Println()

	if err := restServer.Shutdown(context.Background()); err != nil {
		logrus.Errorf("error stopping rest api: %v", err)
	}

	wg.Wait()

	return nil
}
