package config

import (
	"log"
	"os"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

// Config 结构体用于存储应用程序的配置信息
type Config struct {
	ListenAddr  string
	LogLevel    string
	FrontendURL string

	// KV 存储后端: local | sqlite | mysql | s3 | gcs
	KVBackend string

	// local 后端
	LocalStoragePath string

	// sqlite 后端
	SQLitePath string

	// mysql 后端
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// s3 后端
	S3Region string
	S3Bucket string

	// gcs 后端
	GCSProjectID       string
	GCSBucketName      string
	GCSCredentialsFile string

	Debug bool // 是否开启调试模式
}

// AppConfig 是全局配置变量
var AppConfig Config

// Init 函数用于初始化配置
func Init() {
	// 加载 .env 文件
	err := godotenv.Load()
	if err != nil {
		log.Printf("警告：无法加载 .env 文件: %v", err)
	}

	// 从环境变量中读取配置
	AppConfig = Config{
		ListenAddr:         getEnv("LISTEN_ADDR", ":8080"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		FrontendURL:        getEnv("FRONTEND_URL", "http://localhost:5173"),
		KVBackend:          getEnv("KV_BACKEND", "sqlite"),
		LocalStoragePath:   getEnv("LOCAL_STORAGE_PATH", "./data"),
		SQLitePath:         getEnv("SQLITE_PATH", "./data/meshare.db"),
		DBHost:             getEnv("DB_HOST", ""),
		DBPort:             getEnv("DB_PORT", "3306"),
		DBUser:             getEnv("DB_USER", ""),
		DBPassword:         getEnv("DB_PASSWORD", ""),
		DBName:             getEnv("DB_NAME", ""),
		S3Region:           getEnv("S3_REGION", "us-west-2"),
		S3Bucket:           getEnv("S3_BUCKET", ""),
		GCSProjectID:       getEnv("GCS_PROJECT_ID", ""),
		GCSBucketName:      getEnv("GCS_BUCKET_NAME", ""),
		GCSCredentialsFile: getEnv("GCS_CREDENTIALS_FILE", ""),
		Debug:              getEnvAsBool("DEBUG", true),
	}

	validateConfig()

	if AppConfig.Debug {
		gin.SetMode(gin.DebugMode)
		log.Println("应用程序运行在调试模式")
	} else {
		gin.SetMode(gin.ReleaseMode)
		log.Println("应用程序运行在生产模式")
	}

	log.Printf("配置加载完成。KV后端：%s", AppConfig.KVBackend)
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultVal bool) bool {
	valStr := getEnv(key, "")
	if val, err := strconv.ParseBool(valStr); err == nil {
		return val
	}
	return defaultVal
}

func validateConfig() {
	switch AppConfig.KVBackend {
	case "local", "sqlite":
		// 本地后端无需额外配置
	case "mysql":
		if AppConfig.DBHost == "" || AppConfig.DBUser == "" || AppConfig.DBName == "" {
			log.Fatal("错误：MySQL 配置不完整")
		}
	case "s3":
		if AppConfig.S3Bucket == "" {
			log.Fatal("错误：S3 存储桶未设置")
		}
	case "gcs":
		if AppConfig.GCSBucketName == "" || AppConfig.GCSCredentialsFile == "" {
			log.Fatal("错误：GCS 配置不完整")
		}
	default:
		log.Fatalf("错误：未知的 KV 后端 %q", AppConfig.KVBackend)
	}
}
