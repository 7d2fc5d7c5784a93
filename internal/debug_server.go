package internal

import (
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
)

//go:embed inspect.html
var templatesFS embed.FS

type InspectRow struct {
	Key       string
	Type      string
	Timestamp string
	EntityID  string
	Namespace string
	Detail    string
	Scores    string
}

type RowMapper func(key string, val []byte) InspectRow
type StatsProvider func() map[string]any

type PageData struct {
	Prefix string
	Items  []InspectRow
	Stats  map[string]any
}

// DebugServer exposes /inspect (badger keys rendered as HTML) and /metrics.
type DebugServer struct {
	log           *slog.Logger
	db            *badger.DB
	mapper        RowMapper
	statsProvider StatsProvider
	metrics       http.Handler
	defaultPrefix string
	server        *http.Server
}

func NewDebugServer(log *slog.Logger, db *badger.DB, defaultPrefix string,
	mapper RowMapper, statsProvider StatsProvider, metrics http.Handler) *DebugServer {
	if mapper == nil {
		mapper = DefaultMapper
	}
	return &DebugServer{
		log:           log,
		db:            db,
		mapper:        mapper,
		statsProvider: statsProvider,
		metrics:       metrics,
		defaultPrefix: defaultPrefix,
	}
}

// Handler builds the routes without listening, useful in tests.
func (s *DebugServer) Handler() http.Handler {
	mux := http.NewServeMux()
	tmpl := template.Must(template.ParseFS(templatesFS, "inspect.html"))

	mux.HandleFunc("/inspect", func(w http.ResponseWriter, r *http.Request) {
		prefix := r.URL.Query().Get("prefix")
		if prefix == "" {
			prefix = s.defaultPrefix
		}

		data := PageData{
			Prefix: prefix,
			Stats:  make(map[string]any),
		}
		if s.statsProvider != nil {
			data.Stats = s.statsProvider()
		}

		err := s.db.View(func(txn *badger.Txn) error {
			it := txn.NewIterator(badger.DefaultIteratorOptions)
			defer it.Close()
			for it.Seek([]byte(prefix)); it.ValidForPrefix([]byte(prefix)); it.Next() {
				item := it.Item()
				_ = item.Value(func(val []byte) error {
					data.Items = append(data.Items, s.mapper(string(item.Key()), val))
					return nil
				})
			}
			return nil
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := tmpl.Execute(w, data); err != nil {
			s.log.Warn("Inspect page rendering failed", "error", err)
		}
	})

	if s.metrics != nil {
		mux.Handle("/metrics", s.metrics)
	}
	return mux
}

// Start listens on localhost:port in the background.
func (s *DebugServer) Start(port int) {
	s.server = &http.Server{
		Addr:              fmt.Sprintf("127.0.0.1:%d", port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	s.log.Info("Debug inspector available", "url", fmt.Sprintf("http://%s/inspect", s.server.Addr))
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.log.Error("Debug server stopped", "error", err)
		}
	}()
}

func (s *DebugServer) Close() error {
	if s.server == nil {
		return nil
	}
	return s.server.Close()
}

// DefaultMapper reads keys shaped "prefix:namespace:unix_nano:entity".
func DefaultMapper(key string, val []byte) InspectRow {
	parts := strings.Split(key, ":")
	row := InspectRow{
		Key:       key,
		Type:      "RAW",
		Timestamp: "--:--:--",
		EntityID:  "--------",
		Namespace: "default",
		Detail:    "Size: " + strconv.Itoa(len(val)) + " bytes",
		Scores:    "-",
	}

	if len(parts) >= 4 {
		row.Namespace = parts[1]
		if tsNano, err := strconv.ParseInt(parts[2], 10, 64); err == nil {
			row.Timestamp = time.Unix(0, tsNano).Format("15:04:05")
		}
		row.EntityID = parts[3]
		if len(row.EntityID) > 8 {
			row.EntityID = row.EntityID[:8]
		}
	}
	return row
}
