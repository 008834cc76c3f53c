package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName                string
	AppEnv                 string
	AppPort                string
	LogLevel               string
	DatabaseURL            string
	RedisURL               string
	NATSURL                string
	EventChannelBase       string
	CORSAllowOrigins       string
	JWTSecret              string
	CloudinaryCloudName    string
	CloudinaryAPIKey       string
	CloudinaryAPISecret    string
	CloudinaryUploadFolder string
	DashboardCacheTTL      time.Duration
	GradeCacheTTL          time.Duration
	SeedEnabled            bool
	SeedToken              string
	QuizSubmitRateLimit    int
	QuizSubmitRateWindow   time.Duration
	Policy                 Policy
}

// Policy carries the grading defaults used when a quiz or assignment leaves a field unset.
type Policy struct {
	QuizMaxAttempts    int
	QuizCooldownHours  int
	QuizPassingScore   int
	QuizPassBonus      int
	LessonBonus        int
	LatePenaltyPerDay  int
	MaxLateDays        int
	UnenrollThreshold  int
	MaxAttachmentBytes int64
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("TECHBRIDGE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	dashboardTTL, err := parseDuration(v, "dashboard.cache_ttl", "5m")
	if err != nil {
		return Config{}, fmt.Errorf("invalid dashboard cache ttl: %w", err)
	}

	gradeTTL, err := parseDuration(v, "grade.cache_ttl", "10m")
	if err != nil {
		return Config{}, fmt.Errorf("invalid grade cache ttl: %w", err)
	}

	rateWindow, err := parseDuration(v, "quiz.submit_rate_window", "1m")
	if err != nil {
		return Config{}, fmt.Errorf("invalid quiz submit rate window: %w", err)
	}

	cfg := Config{
		AppName:                v.GetString("app.name"),
		AppEnv:                 v.GetString("app.env"),
		AppPort:                v.GetString("app.port"),
		LogLevel:               strings.ToLower(v.GetString("log.level")),
		DatabaseURL:            v.GetString("database.url"),
		RedisURL:               v.GetString("redis.url"),
		NATSURL:                v.GetString("nats.url"),
		EventChannelBase:       v.GetString("events.channel"),
		CORSAllowOrigins:       v.GetString("cors.allow_origins"),
		JWTSecret:              v.GetString("jwt.secret"),
		CloudinaryCloudName:    v.GetString("cloudinary.cloud_name"),
		CloudinaryAPIKey:       v.GetString("cloudinary.api_key"),
		CloudinaryAPISecret:    v.GetString("cloudinary.api_secret"),
		CloudinaryUploadFolder: v.GetString("cloudinary.folder"),
		DashboardCacheTTL:      dashboardTTL,
		GradeCacheTTL:          gradeTTL,
		SeedEnabled:            v.GetBool("seed.enabled"),
		SeedToken:              v.GetString("seed.token"),
		QuizSubmitRateLimit:    v.GetInt("quiz.submit_rate_limit"),
		QuizSubmitRateWindow:   rateWindow,
		Policy: Policy{
			QuizMaxAttempts:    v.GetInt("policy.quiz_max_attempts"),
			QuizCooldownHours:  v.GetInt("policy.quiz_cooldown_hours"),
			QuizPassingScore:   v.GetInt("policy.quiz_passing_score"),
			QuizPassBonus:      v.GetInt("policy.quiz_pass_bonus"),
			LessonBonus:        v.GetInt("policy.lesson_bonus"),
			LatePenaltyPerDay:  v.GetInt("policy.late_penalty_per_day"),
			MaxLateDays:        v.GetInt("policy.max_late_days"),
			UnenrollThreshold:  v.GetInt("policy.unenroll_threshold"),
			MaxAttachmentBytes: v.GetInt64("policy.max_attachment_bytes"),
		},
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	if err := cfg.Policy.validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "TechBridge API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("events.channel", "techbridge")
	v.SetDefault("cors.allow_origins", "*")
	v.SetDefault("cloudinary.folder", "techbridge/submissions")
	v.SetDefault("dashboard.cache_ttl", "5m")
	v.SetDefault("grade.cache_ttl", "10m")
	v.SetDefault("seed.enabled", false)
	v.SetDefault("quiz.submit_rate_limit", 10)
	v.SetDefault("quiz.submit_rate_window", "1m")

	defaults := DefaultPolicy()
	v.SetDefault("policy.quiz_max_attempts", defaults.QuizMaxAttempts)
	v.SetDefault("policy.quiz_cooldown_hours", defaults.QuizCooldownHours)
	v.SetDefault("policy.quiz_passing_score", defaults.QuizPassingScore)
	v.SetDefault("policy.quiz_pass_bonus", defaults.QuizPassBonus)
	v.SetDefault("policy.lesson_bonus", defaults.LessonBonus)
	v.SetDefault("policy.late_penalty_per_day", defaults.LatePenaltyPerDay)
	v.SetDefault("policy.max_late_days", defaults.MaxLateDays)
	v.SetDefault("policy.unenroll_threshold", defaults.UnenrollThreshold)
	v.SetDefault("policy.max_attachment_bytes", defaults.MaxAttachmentBytes)
}

func parseDuration(v *viper.Viper, key, fallback string) (time.Duration, error) {
	raw := strings.TrimSpace(v.GetString(key))
	if raw == "" {
		raw = fallback
	}
	return time.ParseDuration(raw)
}

// DefaultPolicy returns the built-in grading defaults.
func DefaultPolicy() Policy {
	return Policy{
		QuizMaxAttempts:    3,
		QuizCooldownHours:  24,
		QuizPassingScore:   60,
		QuizPassBonus:      20,
		LessonBonus:        10,
		LatePenaltyPerDay:  10,
		MaxLateDays:        7,
		UnenrollThreshold:  50,
		MaxAttachmentBytes: 10 << 20,
	}
}

func (p Policy) validate() error {
	switch {
	case p.QuizMaxAttempts < 1:
		return fmt.Errorf("policy.quiz_max_attempts must be at least 1")
	case p.QuizCooldownHours < 0:
		return fmt.Errorf("policy.quiz_cooldown_hours must not be negative")
	case p.QuizPassingScore < 0 || p.QuizPassingScore > 100:
		return fmt.Errorf("policy.quiz_passing_score must be between 0 and 100")
	case p.LatePenaltyPerDay < 0 || p.LatePenaltyPerDay > 100:
		return fmt.Errorf("policy.late_penalty_per_day must be between 0 and 100")
	case p.MaxLateDays < 0:
		return fmt.Errorf("policy.max_late_days must not be negative")
	case p.UnenrollThreshold < 0 || p.UnenrollThreshold > 100:
		return fmt.Errorf("policy.unenroll_threshold must be between 0 and 100")
	}
	return nil
}
