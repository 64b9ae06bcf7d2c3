package config

import (
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// ProfileStore holds the business profile and swaps it when config.yaml changes,
// so letterheads can be corrected without a restart.
type ProfileStore struct {
	current atomic.Pointer[BusinessProfile]
}

func NewProfileStore(initial BusinessProfile) *ProfileStore {
	s := &ProfileStore{}
	s.Set(initial)
	return s
}

func (s *ProfileStore) Current() BusinessProfile {
	if p := s.current.Load(); p != nil {
		return *p
	}
	return BusinessProfile{}
}

func (s *ProfileStore) Set(profile BusinessProfile) {
	s.current.Store(&profile)
}

// Watch re-reads the business section on every write event of the config file.
// It is a no-op when no config file was found.
func (s *ProfileStore) Watch(log *zap.Logger) {
	v := newViper()
	if err := v.ReadInConfig(); err != nil {
		return
	}
	v.OnConfigChange(func(e fsnotify.Event) {
		s.apply(v, e, log)
	})
	v.WatchConfig()
}

func (s *ProfileStore) apply(v *viper.Viper, e fsnotify.Event, log *zap.Logger) {
	if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
		return
	}
	next := businessFromViper(v)
	if next.Name == "" {
		log.Warn("ignoring business profile reload without a name", zap.String("file", e.Name))
		return
	}
	s.Set(next)
	log.Info("business profile reloaded", zap.String("file", e.Name), zap.String("name", next.Name))
}
