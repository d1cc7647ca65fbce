package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	LogLevel  string          `mapstructure:"log_level"`
	Export    ExportConfig    `mapstructure:"export"`
	Synth     SynthConfig     `mapstructure:"synth"`
	Captions  CaptionsConfig  `mapstructure:"captions"`
	Providers ProvidersConfig `mapstructure:"providers"`
	Server    ServerConfig    `mapstructure:"server"`
}

type ExportConfig struct {
	BitrateKbps int    `mapstructure:"bitrate_kbps"`
	FFmpegPath  string `mapstructure:"ffmpeg_path"`
	FontPath    string `mapstructure:"font_path"`
}

type SynthConfig struct {
	Mood        string  `mapstructure:"mood"`
	Tempo       float64 `mapstructure:"tempo"`
	Speed       float64 `mapstructure:"speed"`
	VoiceVolume float64 `mapstructure:"voice_volume"`
	MusicVolume float64 `mapstructure:"music_volume"`
}

type CaptionsConfig struct {
	Aspect string `mapstructure:"aspect"`
	Style  string `mapstructure:"style"`
}

type ProvidersConfig struct {
	SpeechURL   string `mapstructure:"speech_url"`
	SpeechKey   string `mapstructure:"speech_key"`
	Voice       string `mapstructure:"voice"`
	Transcribe  bool   `mapstructure:"transcribe"`
	GeminiKey   string `mapstructure:"gemini_key"`
	GeminiModel string `mapstructure:"gemini_model"`
	Stub        bool   `mapstructure:"stub"`
}

type ServerConfig struct {
	ListenAddr      string `mapstructure:"listen_addr"`
	Workers         int    `mapstructure:"workers"`
	MaxScriptBytes  int    `mapstructure:"max_script_bytes"`
	RequestTimeout  int    `mapstructure:"request_timeout"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout"`
}

type LoadOptions struct {
	Cmd        flagBinder
	ConfigFile string
	Defaults   Config
}

type flagBinder interface {
	Flags() *pflag.FlagSet
}

func DefaultConfig() Config {
	return Config{
		LogLevel: "info",
		Export: ExportConfig{
			BitrateKbps: 16000,
			FFmpegPath:  "",
			FontPath:    "",
		},
		Synth: SynthConfig{
			Mood:        "calm",
			Tempo:       1.0,
			Speed:       1.0,
			VoiceVolume: 1.0,
			MusicVolume: 0.3,
		},
		Captions: CaptionsConfig{
			Aspect: "9:16",
			Style:  StyleClean,
		},
		Providers: ProvidersConfig{
			SpeechURL:   "https://api.elevenlabs.io/v1",
			SpeechKey:   "",
			Voice:       "",
			Transcribe:  false,
			GeminiKey:   "",
			GeminiModel: "",
			Stub:        false,
		},
		Server: ServerConfig{
			ListenAddr:      ":8080",
			Workers:         2,
			MaxScriptBytes:  4096,
			RequestTimeout:  120,
			ShutdownTimeout: 30,
		},
	}
}

func RegisterFlags(fs *pflag.FlagSet, defaults Config) {
	fs.String("log-level", defaults.LogLevel, "Log level (debug|info|warn|error)")
	fs.Int("export-bitrate-kbps", defaults.Export.BitrateKbps, "Video bitrate in kbit/s")
	fs.String("export-ffmpeg-path", defaults.Export.FFmpegPath, "Path to ffmpeg executable")
	fs.String("export-font-path", defaults.Export.FontPath, "TTF font used for captions")
	fs.String("mood", defaults.Synth.Mood, "Atmosphere mood preset")
	fs.Float64("synth-tempo", defaults.Synth.Tempo, "Atmosphere tempo multiplier")
	fs.Float64("synth-speed", defaults.Synth.Speed, "Voice playback speed")
	fs.Float64("synth-voice-volume", defaults.Synth.VoiceVolume, "Voice stem gain")
	fs.Float64("synth-music-volume", defaults.Synth.MusicVolume, "Background bed gain")
	fs.String("captions-aspect", defaults.Captions.Aspect, "Output aspect ratio (9:16|16:9)")
	fs.String("captions-style", defaults.Captions.Style, "Visual style (clean|cinematic|energetic|dreamy)")
	fs.String("providers-speech-url", defaults.Providers.SpeechURL, "Speech synthesis API base URL")
	fs.String("providers-speech-key", defaults.Providers.SpeechKey, "Speech synthesis API key")
	fs.String("providers-voice", defaults.Providers.Voice, "Narration voice identifier")
	fs.Bool("providers-transcribe", defaults.Providers.Transcribe, "Fetch word timestamps from the speech provider")
	fs.String("providers-gemini-key", defaults.Providers.GeminiKey, "Gemini API key for scene images")
	fs.String("providers-gemini-model", defaults.Providers.GeminiModel, "Gemini model for scene images")
	fs.Bool("providers-stub", defaults.Providers.Stub, "Use the offline stub speech provider")
	fs.String("server-listen-addr", defaults.Server.ListenAddr, "HTTP listen address")
	fs.Int("server-workers", defaults.Server.Workers, "Max concurrent render requests")
	fs.Int("server-max-script-bytes", defaults.Server.MaxScriptBytes, "Max accepted script size in bytes")
	fs.Int("server-request-timeout", defaults.Server.RequestTimeout, "Per-request timeout in seconds")
	fs.Int("server-shutdown-timeout", defaults.Server.ShutdownTimeout, "Graceful shutdown timeout in seconds")
}

func Load(opts LoadOptions) (Config, error) {
	v := viper.New()

	setDefaults(v, opts.Defaults)
	if opts.Cmd != nil {
		if err := v.BindPFlags(opts.Cmd.Flags()); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
		// Aliases map flag spellings onto config keys; registering them
		// without bound flags lets them shadow config-file values.
		registerAliases(v)
	}

	v.SetEnvPrefix("STORYREEL")
	replacer := strings.NewReplacer("-", "_", ".", "_", "__", "_")
	v.SetEnvKeyReplacer(replacer)
	if err := v.BindEnv("providers.speech_key", "STORYREEL_PROVIDERS_SPEECH_KEY", "ELEVEN_LABS_API_KEY"); err != nil {
		return Config{}, fmt.Errorf("bind speech env vars: %w", err)
	}
	if err := v.BindEnv("providers.gemini_key", "STORYREEL_PROVIDERS_GEMINI_KEY", "GEMINI_API_KEY"); err != nil {
		return Config{}, fmt.Errorf("bind gemini env vars: %w", err)
	}
	v.AutomaticEnv()

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	} else {
		v.SetConfigName("storyreel")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper, c Config) {
	v.SetDefault("log_level", c.LogLevel)
	v.SetDefault("export.bitrate_kbps", c.Export.BitrateKbps)
	v.SetDefault("export.ffmpeg_path", c.Export.FFmpegPath)
	v.SetDefault("export.font_path", c.Export.FontPath)
	v.SetDefault("synth.mood", c.Synth.Mood)
	v.SetDefault("synth.tempo", c.Synth.Tempo)
	v.SetDefault("synth.speed", c.Synth.Speed)
	v.SetDefault("synth.voice_volume", c.Synth.VoiceVolume)
	v.SetDefault("synth.music_volume", c.Synth.MusicVolume)
	v.SetDefault("captions.aspect", c.Captions.Aspect)
	v.SetDefault("captions.style", c.Captions.Style)
	v.SetDefault("providers.speech_url", c.Providers.SpeechURL)
	v.SetDefault("providers.speech_key", c.Providers.SpeechKey)
	v.SetDefault("providers.voice", c.Providers.Voice)
	v.SetDefault("providers.transcribe", c.Providers.Transcribe)
	v.SetDefault("providers.gemini_key", c.Providers.GeminiKey)
	v.SetDefault("providers.gemini_model", c.Providers.GeminiModel)
	v.SetDefault("providers.stub", c.Providers.Stub)
	v.SetDefault("server.listen_addr", c.Server.ListenAddr)
	v.SetDefault("server.workers", c.Server.Workers)
	v.SetDefault("server.max_script_bytes", c.Server.MaxScriptBytes)
	v.SetDefault("server.request_timeout", c.Server.RequestTimeout)
	v.SetDefault("server.shutdown_timeout", c.Server.ShutdownTimeout)
}

func registerAliases(v *viper.Viper) {
	v.RegisterAlias("log_level", "log-level")
	v.RegisterAlias("export.bitrate_kbps", "export-bitrate-kbps")
	v.RegisterAlias("export.ffmpeg_path", "export-ffmpeg-path")
	v.RegisterAlias("export.font_path", "export-font-path")
	// Each config key gets exactly one flag alias; a second registration
	// for the same key clobbers the first and orphans its flag.
	v.RegisterAlias("synth.mood", "mood")
	v.RegisterAlias("synth.tempo", "synth-tempo")
	v.RegisterAlias("synth.speed", "synth-speed")
	v.RegisterAlias("synth.voice_volume", "synth-voice-volume")
	v.RegisterAlias("synth.music_volume", "synth-music-volume")
	v.RegisterAlias("captions.aspect", "captions-aspect")
	v.RegisterAlias("captions.style", "captions-style")
	v.RegisterAlias("providers.speech_url", "providers-speech-url")
	v.RegisterAlias("providers.speech_key", "providers-speech-key")
	v.RegisterAlias("providers.voice", "providers-voice")
	v.RegisterAlias("providers.transcribe", "providers-transcribe")
	v.RegisterAlias("providers.gemini_key", "providers-gemini-key")
	v.RegisterAlias("providers.gemini_model", "providers-gemini-model")
	v.RegisterAlias("providers.stub", "providers-stub")
	v.RegisterAlias("server.listen_addr", "server-listen-addr")
	v.RegisterAlias("server.workers", "server-workers")
	v.RegisterAlias("server.max_script_bytes", "server-max-script-bytes")
	v.RegisterAlias("server.request_timeout", "server-request-timeout")
	v.RegisterAlias("server.shutdown_timeout", "server-shutdown-timeout")
}
