// Command token emite un JWT firmado para un rol, usando la misma configuración que la API.
//
//	JWT_SECRET=... go run ./cmd/token -role operator -user bodega-1
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/jhoicas/perecederos-api/pkg/config"
	"github.com/jhoicas/perecederos-api/pkg/jwt"
	"github.com/jhoicas/perecederos-api/pkg/logger"
)

func main() {
	role := flag.String("role", jwt.RoleUser, "rol: admin | operator | user")
	user := flag.String("user", "", "identificador del usuario (por defecto un UUID nuevo)")
	minutes := flag.Int("minutes", 0, "vigencia en minutos (por defecto JWT_EXPIRATION_MINUTES)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "cargar configuración:", err)
		os.Exit(1)
	}
	log := logger.NewWithWriter(os.Stderr, logger.Config{Level: cfg.Log.Level, Service: "token"})

	if !jwt.ValidRole(*role) {
		log.Fatal().Str("role", *role).Msg("rol desconocido")
	}
	if *user == "" {
		*user = uuid.New().String()
	}
	exp := cfg.JWT.Expiration
	if *minutes > 0 {
		exp = *minutes
	}

	tok, err := jwt.Generate(cfg.JWT.Secret, *user, *role, cfg.JWT.Issuer, exp)
	if err != nil {
		log.Fatal().Err(err).Msg("generar token")
	}
	log.Info().Str("user_id", *user).Str("role", *role).Int("minutes", exp).Msg("token emitido")
	fmt.Println(tok)
}
