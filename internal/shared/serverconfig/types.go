package serverconfig

import "time"

type Config struct {
	WorldServer WorldServerConfig `mapstructure:"worldserver"`
	MongoDB     MongoDBConfig     `mapstructure:"mongodb"`
	Redis       RedisConfig       `mapstructure:"redis"`
	MySQL       MySQLConfig       `mapstructure:"mysql"`
	Log         LogConfig         `mapstructure:"log"`
	Logic       LogicConfig       `mapstructure:"logic"`
	JWTSecret   string            `mapstructure:"jwt_secret"`
}

type WorldServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	// RatePerSecond/RateBurst 是每个 kingdom 写接口的令牌桶参数，0 表示不限流。
	RatePerSecond float64 `mapstructure:"rate_per_second"`
	RateBurst     int     `mapstructure:"rate_burst"`
}

type MongoDBConfig struct {
	URI      string        `mapstructure:"uri" env:"MONGO_URI"`
	Database string        `mapstructure:"database"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

type RedisConfig struct {
	// URL 为空时不启用 redis 事件扇出。
	URL string `mapstructure:"url" env:"REDIS_URL"`
}

type MySQLConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password" env:"MYSQL_PASSWORD"`
	DBName   string `mapstructure:"dbname"`
	Charset  string `mapstructure:"charset"`
	MaxIdle  int    `mapstructure:"max_idle"`
	MaxConn  int    `mapstructure:"max_conn"`
	ShowSQL  bool   `mapstructure:"show_sql"`
}

type LogConfig struct {
	FileDir    string `mapstructure:"file_dir"`
	MaxSize    int    `mapstructure:"max_size"` // MB
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"` // days
	Compress   bool   `mapstructure:"compress"`
	Level      string `mapstructure:"level" env:"LOG_LEVEL"`
	Dev        bool   `mapstructure:"dev"`
}

type LogicConfig struct {
	// Storage: mongo | memory
	Storage string `mapstructure:"storage" env:"WORLD_STORAGE"`
	// Reports: mysql | memory
	Reports     string `mapstructure:"reports"`
	BalanceFile string `mapstructure:"balance_file"`

	TickInterval time.Duration `mapstructure:"tick_interval"`
	// DayLength 是一个游戏日对应的真实时长，省份解锁按世界年龄换算成天数。
	DayLength    time.Duration `mapstructure:"day_length"`
	SeasonLength time.Duration `mapstructure:"season_length"`
	ReportFlush  time.Duration `mapstructure:"report_flush"`

	MaxKingdoms  int `mapstructure:"max_kingdoms"`
	SpawnSpacing int `mapstructure:"spawn_spacing"`
	SpawnTries   int `mapstructure:"spawn_tries"`
}
