// Package gallery serves the browser clock faces, one theme per port, so a
// phone on the LAN picks a look just by URL.
package gallery

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
)

// Theme is one clock face: a static directory bound to its own port
type Theme struct {
	Name string `yaml:"name" json:"name"`
	Dir  string `yaml:"dir" json:"dir"`
	Port int    `yaml:"port" json:"port"`
}

// DefaultThemes returns the built-in faces, one port each starting at 8005
func DefaultThemes() []Theme {
	return []Theme{
		{Name: "Matrix Rain Terminal", Dir: "terminal-matrix", Port: 8005},
		{Name: "Neon Grid Terminal", Dir: "terminal-neon-grid", Port: 8006},
		{Name: "Tactical Terminal", Dir: "terminal-tactical", Port: 8007},
		{Name: "Holographic Terminal", Dir: "terminal-hologram", Port: 8008},
		{Name: "Glitch Terminal", Dir: "terminal-glitch", Port: 8009},
	}
}

// Server hosts every available theme under one lifecycle
type Server struct {
	baseDir string
	themes  []Theme
}

func NewServer(baseDir string, themes []Theme) *Server {
	return &Server{baseDir: baseDir, themes: themes}
}

// availableThemes filters the configured themes down to those whose
// directory actually exists, warning about the rest.
func (s *Server) availableThemes() []Theme {
	available := make([]Theme, 0, len(s.themes))
	for _, theme := range s.themes {
		dir := filepath.Join(s.baseDir, theme.Dir)
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			log.Warn().Str("theme", theme.Name).Str("dir", dir).Msg("theme directory missing, skipping")
			continue
		}
		available = append(available, theme)
	}
	return available
}

func themeHandler(dir string) http.Handler {
	return http.FileServer(http.Dir(dir))
}

// Run serves every available theme until ctx is cancelled, then shuts the
// listeners down gracefully. It fails outright only when no theme directory
// exists at all.
func (s *Server) Run(ctx context.Context) error {
	themes := s.availableThemes()
	if len(themes) == 0 {
		return fmt.Errorf("no theme directories under %s", s.baseDir)
	}

	servers := make([]*http.Server, 0, len(themes))
	for _, theme := range themes {
		srv := &http.Server{
			Addr:         fmt.Sprintf(":%d", theme.Port),
			Handler:      themeHandler(filepath.Join(s.baseDir, theme.Dir)),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  120 * time.Second,
		}
		servers = append(servers, srv)

		go func(theme Theme, srv *http.Server) {
			log.Info().
				Str("theme", theme.Name).
				Str("url", fmt.Sprintf("http://localhost:%d", theme.Port)).
				Msg("theme server starting")
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error().Err(err).Str("theme", theme.Name).Msg("theme server failed")
			}
		}(theme, srv)
	}

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for _, srv := range servers {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Str("addr", srv.Addr).Msg("theme server shutdown failed")
		}
	}
	log.Info().Msg("gallery stopped")
	return nil
}
