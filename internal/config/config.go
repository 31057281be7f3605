package config

import (
	"time"

	"github.com/phrazzld/vocab-review/internal/domain"
	"github.com/phrazzld/vocab-review/internal/domain/session"
	"github.com/phrazzld/vocab-review/internal/domain/srs"
)

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Log      LogConfig      `mapstructure:"log"      validate:"required"`
	Database DatabaseConfig `mapstructure:"database"`
	SRS      SRSConfig      `mapstructure:"srs"      validate:"required"`
	Review   ReviewConfig   `mapstructure:"review"   validate:"required"`
	Replay   ReplayConfig   `mapstructure:"replay"   validate:"required"`
}

// LogConfig controls the structured logger.
type LogConfig struct {
	Level  string `mapstructure:"level"  validate:"required,oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"required,oneof=json text"`
}

// DatabaseConfig contains all database-related configuration settings.
// The URL is optional because the replay command works without a database.
type DatabaseConfig struct {
	URL             string        `mapstructure:"url"               validate:"omitempty,url"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"    validate:"gte=1"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"    validate:"gte=0,ltefield=MaxOpenConns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime" validate:"gte=0"`
}

// SRSConfig tunes the scheduling engine.
type SRSConfig struct {
	MinEaseFactor      float64 `mapstructure:"min_ease_factor"     validate:"gte=1.3"`
	DefaultEaseFactor  float64 `mapstructure:"default_ease_factor" validate:"gtefield=MinEaseFactor"`
	MaxIntervalDays    int     `mapstructure:"max_interval_days"   validate:"gte=0,lte=1000000"`
	ReviewingThreshold int     `mapstructure:"reviewing_threshold" validate:"gte=1"`
	MasteredThreshold  int     `mapstructure:"mastered_threshold"  validate:"gtfield=ReviewingThreshold"`
}

// ReviewConfig controls grading and session scoring.
type ReviewConfig struct {
	// 0 disables the fast-answer upgrade to easy
	FastResponseThresholdMs int                `mapstructure:"fast_response_threshold_ms" validate:"gte=0"`
	ScoreWeights            ScoreWeightsConfig `mapstructure:"score_weights"`
}

// ScoreWeightsConfig holds per-grade session points.
type ScoreWeightsConfig struct {
	Again int `mapstructure:"again"`
	Hard  int `mapstructure:"hard"`
	Good  int `mapstructure:"good"`
	Easy  int `mapstructure:"easy"`
}

// ReplayConfig controls batch replay.
type ReplayConfig struct {
	Concurrency int `mapstructure:"concurrency" validate:"gte=1,lte=256"`
}

// SRSParams builds the scheduler parameters described by the configuration.
func (c *Config) SRSParams() *srs.Params {
	return srs.NewParams(srs.ParamsConfig{
		MinEaseFactor:      c.SRS.MinEaseFactor,
		MaxIntervalDays:    c.SRS.MaxIntervalDays,
		ReviewingThreshold: c.SRS.ReviewingThreshold,
		MasteredThreshold:  c.SRS.MasteredThreshold,
	})
}

// Classifier builds the review classifier described by the configuration.
func (c *Config) Classifier() srs.Classifier {
	return srs.NewClassifier(time.Duration(c.Review.FastResponseThresholdMs) * time.Millisecond)
}

// Weights builds the session score weights described by the configuration.
func (c *Config) Weights() session.ScoreWeights {
	w := c.Review.ScoreWeights
	return session.ScoreWeights{Again: w.Again, Hard: w.Hard, Good: w.Good, Easy: w.Easy}
}

// NewCardState returns the state given to a card that has never been reviewed.
func (c *Config) NewCardState(now time.Time) domain.CardState {
	state := domain.NewCardState(now)
	if c.SRS.DefaultEaseFactor > 0 {
		state.EaseFactor = c.SRS.DefaultEaseFactor
	}
	return state
}
