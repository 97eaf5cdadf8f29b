package main

import (
	"net/http"
	"os"
	"time"

	"go.uber.org/zap"

	"retrowheel/database" //PostgreSQLとRedisの初期化
	"retrowheel/feed"     //変更フィード（WebSocketによるテーブル変更のプッシュ配信）
	"retrowheel/screens"  //各画面のHTTPリクエストの処理
	"retrowheel/utils"    //ロガーの初期化とCronジョブ(古いセッションの定期クリーンナップ)

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/gorilla/websocket"
	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

func main() {
	// .envがあれば読み込む（REDIS_ADDR、JWT_SECRETなど）
	godotenv.Load()

	var logger *zap.Logger
	var err error
	logger, err = utils.InitLogger() // ロガーの初期化
	if err != nil {
		panic(err) // 失敗した場合はプログラム停止
	}
	defer logger.Sync() // ロガーのクリーンアップ

	// Websocket接続で用いる変数を初期化
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}

	// 非同期でPostgreSQLとRedisの初期化
	var db *gorm.DB
	var rdb *redis.Client
	done := make(chan bool)

	go func() {
		config, err := database.LoadConfig("config.json")
		if err != nil {
			logger.Fatal("設定ファイルの読み込みに失敗しました", zap.Error(err))
		}
		db, err = database.InitPostgreSQL(config, logger)
		if err != nil {
			logger.Fatal("PostgreSQLの初期化に失敗しました", zap.Error(err))
		}
		if err := database.AutoMigrate(db); err != nil {
			logger.Fatal("テーブルのマイグレーションに失敗しました", zap.Error(err))
		}
		done <- true
	}()

	go func() {
		rdb, err = database.InitRedis(logger)
		if err != nil {
			logger.Fatal("Failed to initialize Redis", zap.Error(err))
		}
		done <- true
	}()

	// 2つの初期化が完了するのを待つ
	<-done
	<-done

	// クーロンスケジューラのセットアップと呼び出し
	go utils.CronCleaner(db, logger)

	// 変更フィードのハブを初期化
	hub := feed.NewHub(logger)

	router := gin.New()
	router.Use(gin.Recovery(), utils.RequestLogger(logger))

	//CORS（Cross-Origin Resource Sharing）ポリシーを設定
	allowOrigin := os.Getenv("ALLOW_ORIGIN")
	if allowOrigin == "" {
		allowOrigin = "http://localhost:3000" // フロント開発サーバーのデフォルト
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{allowOrigin},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "FeedSessionID"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	//各HTTPリクエストのルーティング
	router.POST("/session", func(c *gin.Context) {
		screens.SessionCreate(c, db, hub, logger)
	})
	router.POST("/session/join/:code", func(c *gin.Context) {
		screens.SessionJoin(c, db, hub, logger)
	})
	router.GET("/session/:code", func(c *gin.Context) {
		screens.SessionInfo(c, db, hub, logger)
	})
	router.PUT("/session/finish", func(c *gin.Context) {
		screens.SessionFinish(c, db, hub, logger)
	})
	router.POST("/answer", func(c *gin.Context) {
		screens.AnswerSave(c, db, hub, logger)
	})
	router.POST("/reaction/toggle", func(c *gin.Context) {
		screens.ReactionToggle(c, db, hub, logger)
	})
	router.POST("/vote", func(c *gin.Context) {
		screens.VoteCast(c, db, hub, logger)
	})
	router.POST("/heart", func(c *gin.Context) {
		screens.HeartCollect(c, db, hub, logger)
	})
	router.PUT("/timer", func(c *gin.Context) {
		screens.TimerControl(c, db, hub, logger)
	})
	router.GET("/results/:code", func(c *gin.Context) {
		screens.Results(c, db, hub, logger)
	})
	router.GET("/export/:code", func(c *gin.Context) {
		screens.Export(c, db, hub, logger)
	})
	router.GET("/ws", func(c *gin.Context) {
		feed.HandleConnections(c.Request.Context(), c, db, rdb, hub, logger, upgrader)
	})

	// テスト時はHTTPサーバーとして運用。デフォルトポートは ":8080"
	router.Run()
}
