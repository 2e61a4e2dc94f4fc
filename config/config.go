package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/quartzsolar/nationalboost-go/logging"
	"github.com/quartzsolar/nationalboost-go/slice"
	"github.com/quartzsolar/nationalboost-go/store"
	"github.com/spf13/viper"
)

type AppConfigModel struct {
	// Identifying name of the trained model family
	Name string
	// Hours-ahead steps to forecast, one trained model per step
	Horizons []int
	// When true the batch base time is taken from the snapshot's own init
	// time instead of the wall clock. Enables deterministic replay.
	OverwriteReadDatetime bool `mapstructure:"overwrite_read_datetime"`
	// CSV with the x,y coordinate pairing the models were trained against
	CoordinateFile string `mapstructure:"coordinate_file"`
	// Local directory with model artifacts, used when no S3 bucket is configured
	ArtifactDir string `mapstructure:"artifact_dir"`
}

type AppConfigReplay struct {
	From string // RFC3339, inclusive
	To   string // RFC3339, inclusive
}

func (r AppConfigReplay) GetFrom() (time.Time, error) {
	t, err := time.Parse(time.RFC3339, r.From)
	if err != nil {
		return time.Time{}, fmt.Errorf("replay 'from' timestamp: %w", err)
	}
	return t.UTC(), nil
}

func (r AppConfigReplay) GetTo() (time.Time, error) {
	t, err := time.Parse(time.RFC3339, r.To)
	if err != nil {
		return time.Time{}, fmt.Errorf("replay 'to' timestamp: %w", err)
	}
	return t.UTC(), nil
}

type AppConfigDataFeed struct {
	// "local" reads datasets from nwp_dir/gsp_file, "s3" from nwp_prefix/gsp_key
	Source    string
	NwpDir    string `mapstructure:"nwp_dir"`
	GspFile   string `mapstructure:"gsp_file"`
	NwpPrefix string `mapstructure:"nwp_prefix"`
	GspKey    string `mapstructure:"gsp_key"`
	// When set the feed replays this bounded historical range
	Replay *AppConfigReplay
}

type AppConfigDatabase struct {
	Path string
	// Prediction table write semantics: "overwrite" or "append"
	WriteMode *string `mapstructure:"write_mode"`
	// Path for the file-backed reference store used when not writing to the database
	MockPath *string `mapstructure:"mock_path"`
	// How many days predictions should be stored before they get purged
	DataRetentionDays *int `mapstructure:"data_retention_days"`
	// How many days daily backup files should be stored before they get deleted
	BackupRetentionDays *int `mapstructure:"backup_retention_days"`
}

func (d AppConfigDatabase) GetWriteMode() string {
	if d.WriteMode == nil {
		return "append"
	}
	return *d.WriteMode
}

func (d AppConfigDatabase) GetMockPath() string {
	if d.MockPath == nil {
		return "data/mock_inference_database.gob"
	}
	return *d.MockPath
}

func (d AppConfigDatabase) GetDataRetentionDays() int {
	if d.DataRetentionDays == nil {
		return 90
	}
	return *d.DataRetentionDays
}

func (d AppConfigDatabase) GetBackupRetentionDays() int {
	if d.BackupRetentionDays == nil {
		return 90
	}
	return *d.BackupRetentionDays
}

type AppConfigS3 struct {
	Endpoint    string
	Region      string
	Bucket      string
	ModelPrefix string `mapstructure:"model_prefix"`
	AccessKey   string `mapstructure:"access_key"`
	SecretKey   string `mapstructure:"secret_key"`
}

type AppConfigInference struct {
	RunAt string `mapstructure:"run_at"`
}

type AppConfigLogging struct {
	// Min log level for database : "DEBUG", "INFO", "WARN", "ERROR", default: "INFO"
	DbLevel *string `mapstructure:"db_level"`
	// Log attributes format: "TEXT", "JSON", default: "JSON"
	DbAttrsFormat *string `mapstructure:"db_attrs_format"`
	// Maximum number of log entries in the database, default: 10000
	DbMaxEntries *int `mapstructure:"db_max_entries"`
	// Min log level for console: "DEBUG", "INFO", "WARN", "ERROR", default: "INFO"
	ConsoleLevel *string `mapstructure:"console_level"`
}

func (l AppConfigLogging) GetDbLevel() slog.Level {
	return logging.LevelFromString(l.DbLevel)
}

func (l AppConfigLogging) GetDbAttrsFormat() logging.LogAttrFormat {
	if l.DbAttrsFormat == nil {
		return logging.LogAttrFormatJSON
	}
	if strings.EqualFold(*l.DbAttrsFormat, "text") {
		return logging.LogAttrFormatText
	}
	return logging.LogAttrFormatJSON
}

func (l AppConfigLogging) GetDbMaxEntries() int {
	if l.DbMaxEntries == nil {
		return 10000
	}
	return *l.DbMaxEntries
}

func (l AppConfigLogging) GetConsoleLevel() slog.Level {
	return logging.LevelFromString(l.ConsoleLevel)
}

type AppConfig struct {
	Model     AppConfigModel
	DataFeed  AppConfigDataFeed `mapstructure:"data_feed"`
	Database  AppConfigDatabase
	S3        AppConfigS3
	Inference AppConfigInference
	Logging   AppConfigLogging
}

func Load(path string) (*AppConfig, error) {
	if path != "" {
		viper.SetConfigFile(path)
	} else {
		viper.AddConfigPath("config")
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	var c AppConfig

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("unable to read config file: %w", err)
	}

	if err := viper.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unable to unmarshal config file: %w", err)
	}

	if err := c.validate(); err != nil {
		return nil, err
	}

	return &c, nil
}

func (c *AppConfig) validate() error {
	if c.Model.Name == "" {
		return fmt.Errorf("config: model name is required")
	}
	if len(c.Model.Horizons) == 0 {
		return fmt.Errorf("config: at least one forecast horizon is required")
	}
	if !slice.All(c.Model.Horizons, func(h int) bool { return h >= 0 }) {
		return fmt.Errorf("config: forecast horizons must not be negative, got %v", c.Model.Horizons)
	}
	if _, err := store.ParseMode(c.Database.GetWriteMode()); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.DataFeed.Replay != nil {
		from, err := c.DataFeed.Replay.GetFrom()
		if err != nil {
			return fmt.Errorf("config: %w", err)
		}
		to, err := c.DataFeed.Replay.GetTo()
		if err != nil {
			return fmt.Errorf("config: %w", err)
		}
		if to.Before(from) {
			return fmt.Errorf("config: replay range ends before it starts")
		}
	}
	return nil
}
