package main

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"log"
	"log/syslog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"github.com/memoka/memoka-server/ai"
	"github.com/memoka/memoka-server/database"
	"github.com/memoka/memoka-server/memo"
	"github.com/memoka/memoka-server/memoapi"
)

func main() {
	config, err := loadConfig()
	if err != nil {
		log.Fatalf("config: %s", err)
	}

	switch config.Logfile {
	case "syslog":
		logw, err := syslog.New(syslog.LOG_NOTICE, "memoka")
		if err != nil {
			log.Fatalf("error opening syslog: %v", err)
		}
		log.SetOutput(logw)
	case "none":
		log.SetOutput(io.Discard)
	case "":
		fallthrough
	case "stdout":
	default:
		f, err := os.OpenFile(config.Logfile,
			os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0666)
		if err != nil {
			log.Fatalf("error opening file: %v", err)
		}
		defer f.Close()
		log.SetOutput(f)
	}

	db, err := database.New(&database.Options{
		Filename: config.Dbfile,
	})
	if err != nil {
		log.Fatalf("database.New: %s", err)
	}
	db.StartBackgroundJobs(context.Background())

	analyzer := ai.New(ai.Options{
		Endpoint:   config.AI.Endpoint,
		APIKey:     config.AI.APIKey,
		Model:      config.AI.Model,
		EmbedModel: config.AI.EmbedModel,
	})
	if analyzer.Enabled() {
		log.Printf("Memo analysis enabled via %s", config.AI.Endpoint)
	} else {
		log.Printf("Memo analysis disabled, no AI endpoint configured")
	}

	memos := memo.New(&memo.Options{
		Db:           db,
		Analyzer:     analyzer,
		AnalyzeDelay: config.AI.AnalyzeDelay,
	})
	defer memos.Stop()

	r := mux.NewRouter()

	api := memoapi.New(&memoapi.Options{
		Memos:        memos,
		Repo:         db,
		ServerName:   config.ServerName,
		AutoRegister: config.AutoRegister,
	})
	api.RegisterHandlers(r)

	r.PathPrefix("/").Handler(http.FileServer(http.Dir(config.Appdir)))

	server := HttpLog(r)

	addr := fmt.Sprintf(":%d", config.Listen.Port)

	if config.Listen.TLSCert != "" && config.Listen.TLSKey != "" {
		kpr, err := NewKeypairReloader(config.Listen.TLSCert, config.Listen.TLSKey)
		if err != nil {
			log.Fatalf("error loading keypair: %v", err)
		}

		srv := &http.Server{
			Addr:    addr,
			Handler: server,
			TLSConfig: &tls.Config{
				MinVersion:     tls.VersionTLS13,
				GetCertificate: kpr.GetCertificateFunc(),
			},
		}
		log.Printf("Serving HTTPS on %s", addr)
		log.Fatal(srv.ListenAndServeTLS("", ""))
	} else {
		log.Printf("Serving HTTP on %s", addr)
		log.Fatal(http.ListenAndServe(addr, server))
	}
}

type keypairReloader struct {
	certMu   sync.RWMutex
	cert     *tls.Certificate
	certPath string
	keyPath  string
}

// NewKeypairReloader creates a new keypair reloader that will reload the TLS certificate
// and key from the specified paths every 15 seconds. If the certificate cannot be loaded,
// it will log an error and keep the old certificate in use.
func NewKeypairReloader(certPath, keyPath string) (*keypairReloader, error) {
	result := &keypairReloader{
		certPath: certPath,
		keyPath:  keyPath,
	}
	cert, err := tls.LoadX509KeyPair(certPath, keyPath)
	if err != nil {
		return nil, err
	}
	result.cert = &cert

	go func() {
		for {
			time.Sleep(15 * time.Second)
			if err := result.maybeReload(); err != nil {
				log.Printf("Keeping old TLS certificate because the new one could not be loaded: %v", err)
			}
		}
	}()
	return result, nil
}

func (kpr *keypairReloader) GetCertificateFunc() func(*tls.ClientHelloInfo) (*tls.Certificate, error) {
	return func(clientHello *tls.ClientHelloInfo) (*tls.Certificate, error) {
		kpr.certMu.RLock()
		defer kpr.certMu.RUnlock()
		return kpr.cert, nil
	}
}

func (kpr *keypairReloader) maybeReload() error {
	newCert, err := tls.LoadX509KeyPair(kpr.certPath, kpr.keyPath)
	if err != nil {
		return err
	}
	kpr.certMu.Lock()
	defer kpr.certMu.Unlock()
	kpr.cert = &newCert
	return nil
}
