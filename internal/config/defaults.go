package config

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = "/usr/local/var/susume/data/db/videos.db"
	}
	if cfg.Storage.IndexPath == "" {
		cfg.Storage.IndexPath = "/usr/local/var/susume/data/indices/videos.bolt"
	}
	if cfg.Storage.BleveIndexPath == "" {
		cfg.Storage.BleveIndexPath = "/usr/local/var/susume/data/indices/bleve"
	}
	if cfg.Embedding.ModelPath == "" {
		cfg.Embedding.ModelPath = "/usr/local/var/susume/data/models/all-MiniLM-L6-v2.onnx"
	}
	if cfg.Embedding.Dimensions == 0 {
		cfg.Embedding.Dimensions = 384
	}
	if cfg.Embedding.MaxTokens == 0 {
		cfg.Embedding.MaxTokens = 256
	}
	if cfg.Embedding.CacheSize == 0 {
		cfg.Embedding.CacheSize = 10000
	}
	if cfg.Recommend.DefaultSimilarK == 0 {
		cfg.Recommend.DefaultSimilarK = 5
	}
	if cfg.Recommend.MaxSimilarK == 0 {
		cfg.Recommend.MaxSimilarK = 20
	}
	if cfg.Recommend.DefaultSearchK == 0 {
		cfg.Recommend.DefaultSearchK = 10
	}
	if cfg.Recommend.MaxSearchK == 0 {
		cfg.Recommend.MaxSearchK = 50
	}
	if cfg.Recommend.SummaryChars == 0 {
		cfg.Recommend.SummaryChars = 300
	}
	if cfg.Recommend.TranscriptChars == 0 {
		cfg.Recommend.TranscriptChars = 800
	}
	if cfg.Recommend.DescriptionChars == 0 {
		cfg.Recommend.DescriptionChars = 300
	}
	if cfg.Recommend.MetadataChars == 0 {
		cfg.Recommend.MetadataChars = 500
	}
	if cfg.Discovery.BaseURL == "" {
		cfg.Discovery.BaseURL = "https://www.googleapis.com/youtube/v3"
	}
	if cfg.Discovery.Overfetch == 0 {
		cfg.Discovery.Overfetch = 20
	}
	if cfg.Discovery.DefaultK == 0 {
		cfg.Discovery.DefaultK = 5
	}
	if cfg.Discovery.MaxK == 0 {
		cfg.Discovery.MaxK = 10
	}
	if cfg.Discovery.QueryTerms == 0 {
		cfg.Discovery.QueryTerms = 5
	}
}
