package config

// StorageConfig configures where uploaded spreadsheets are archived.
type StorageConfig struct {
	Mode     string // "local" or "s3"
	LocalDir string
	S3Bucket string
	S3Region string
	S3Prefix string
}

func loadStorageConfig() StorageConfig {
	return StorageConfig{
		Mode:     getEnv("STORAGE_MODE", "local"),
		LocalDir: getEnv("UPLOAD_DIR", "./uploads"),
		S3Bucket: getEnv("AWS_BUCKET", "bootcamp-registration-uploads"),
		S3Region: getEnv("AWS_REGION", "us-east-1"),
		S3Prefix: getEnv("AWS_BUCKET_PREFIX", ""),
	}
}
