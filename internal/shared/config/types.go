package config

type Config struct {
	HTTPServer HTTPServerConfig `yaml:"httpserver" mapstructure:"httpserver"`
	MySQL      MySQLConfig      `yaml:"mysql" mapstructure:"mysql"`
	Mongo      MongoConfig      `yaml:"mongo" mapstructure:"mongo"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
	Game       GameConfig       `yaml:"game" mapstructure:"game"`
}

type HTTPServerConfig struct {
	Host string `yaml:"host" mapstructure:"host"`
	Port int    `yaml:"port" mapstructure:"port"`
}

type MySQLConfig struct {
	Host     string `yaml:"host" mapstructure:"host"`
	Port     int    `yaml:"port" mapstructure:"port"`
	User     string `yaml:"user" mapstructure:"user"`
	Password string `yaml:"password" mapstructure:"password"`
	DBName   string `yaml:"dbname" mapstructure:"dbname"`
	MaxConn  int    `yaml:"maxconn" mapstructure:"maxconn"`
	MaxIdle  int    `yaml:"maxidle" mapstructure:"maxidle"`
}

type MongoConfig struct {
	URI    string `yaml:"uri" mapstructure:"uri"`
	DBName string `yaml:"dbname" mapstructure:"dbname"`
}

type LogConfig struct {
	Level      string `yaml:"level" mapstructure:"level"`
	FileDir    string `yaml:"file_dir" mapstructure:"file_dir"`
	MaxSize    int    `yaml:"max_size" mapstructure:"max_size"`
	MaxBackups int    `yaml:"max_backups" mapstructure:"max_backups"`
	MaxAge     int    `yaml:"max_age" mapstructure:"max_age"`
	Compress   bool   `yaml:"compress" mapstructure:"compress"`
	Dev        bool   `yaml:"dev" mapstructure:"dev"`
}

// GameConfig carries the match parameters: session bounds and the state a
// fresh village starts with.
type GameConfig struct {
	SessionDurationSec int     `yaml:"session_duration_sec" mapstructure:"session_duration_sec"`
	MinPlayers         int     `yaml:"min_players" mapstructure:"min_players"`
	MaxPlayers         int     `yaml:"max_players" mapstructure:"max_players"`
	MapSize            int     `yaml:"map_size" mapstructure:"map_size"`
	StartWood          float64 `yaml:"start_wood" mapstructure:"start_wood"`
	StartClay          float64 `yaml:"start_clay" mapstructure:"start_clay"`
	StartIron          float64 `yaml:"start_iron" mapstructure:"start_iron"`
	StartMorale        int     `yaml:"start_morale" mapstructure:"start_morale"`
}
