package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	firebase "firebase.google.com/go/v4"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/alnifu/orgsync-web-sub000/app"
	"github.com/alnifu/orgsync-web-sub000/controllers"
	"github.com/alnifu/orgsync-web-sub000/db/postgres"
	"github.com/alnifu/orgsync-web-sub000/routes"
	"github.com/alnifu/orgsync-web-sub000/util/dotenv"
	"github.com/alnifu/orgsync-web-sub000/util/log"
)

func main() {
	if err := dotenv.LoadDotEnvs(); err != nil {
		log.Log.WithError(err).Fatal("failed to load .env files")
	}
	log.InitLogger()

	db, err := postgres.GetDatabase()
	if err != nil {
		log.Log.WithError(err).Fatal("failed to connect to the database")
	}
	defer db.Close()

	if err := configureFirebaseCredentials(); err != nil {
		log.Log.WithError(err).Fatal("failed to configure firebase credentials")
	}
	firebaseApp, err := firebase.NewApp(context.Background(), nil)
	if err != nil {
		log.Log.WithError(err).Fatal("failed to initialize firebase")
	}
	authClient, err := firebaseApp.Auth(context.Background())
	if err != nil {
		log.Log.WithError(err).Fatal("failed to initialize the auth client")
	}

	gin.SetMode(os.Getenv("GIN_MODE"))
	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:  strings.Split(os.Getenv("FE_ORIGINS"), ";"),
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE"},
		AllowHeaders:  []string{"Origin", "Authorization", "Content-Type", routes.SessionHeader},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}))

	orgController, err := controllers.NewOrgController(context.Background(), db)
	if err != nil {
		log.Log.WithError(err).Fatal("failed to initialize the org controller")
	}
	interactions := app.NewInteractionService(db)
	views := app.NewViewTracker(db)

	routes.AddHealthCheckRoutes(&r.RouterGroup)
	routes.AddUserRoutes(&r.RouterGroup, db, authClient)
	routes.AddOrgRoutes(&r.RouterGroup, db, orgController, authClient)
	routes.AddPostRoutes(&r.RouterGroup, db, views, authClient)
	routes.AddInteractionRoutes(&r.RouterGroup, db, interactions, authClient)
	routes.AddFeedRoutes(&r.RouterGroup, db, authClient)
	routes.AddLeaderboardRoutes(&r.RouterGroup, db, authClient)

	if err := r.Run(); err != nil {
		log.Log.WithError(err).Fatal("web server exited")
	}
}

const (
	CredentialsPathEnvVar = "GOOGLE_APPLICATION_CREDENTIALS"
	CredentialsJsonEnvVar = "GOOGLE_APPLICATION_CREDENTIALS_JSON"
	TargetCredentialsFile = "./google-application-credentials.json"
)

// configureFirebaseCredentials materializes credentials passed as a JSON env
// var into the file the firebase SDK expects.
func configureFirebaseCredentials() error {
	credentialsPath, hasCredentialsPath := os.LookupEnv(CredentialsPathEnvVar)
	if hasCredentialsPath {
		log.Log.WithField("path", credentialsPath).Info("using credentials path from env")
		return nil
	}
	credentialsJson, hasCredentialsJson := os.LookupEnv(CredentialsJsonEnvVar)
	if hasCredentialsJson {
		if err := os.WriteFile(TargetCredentialsFile, []byte(credentialsJson), 0400); err != nil {
			return fmt.Errorf("error writing credentials to temp file, %w", err)
		}
		if err := os.Setenv(CredentialsPathEnvVar, TargetCredentialsFile); err != nil {
			return fmt.Errorf("error setting %v env var %w", CredentialsPathEnvVar, err)
		}
		return nil
	}
	return fmt.Errorf("must specify either %v (a path)"+
		" or %v (credentials as JSON string)", CredentialsPathEnvVar, CredentialsJsonEnvVar)
}
