package main

import (
	"flag"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	appconfig "github.com/ibom-labs/media-auth/config"
	"github.com/ibom-labs/media-auth/mediaauth"
	"github.com/ibom-labs/media-auth/mediaauth/capability"
	"github.com/ibom-labs/media-auth/mediaauth/holders"
	"github.com/ibom-labs/media-auth/mediaauth/intent"
	"github.com/ibom-labs/media-auth/mediaauth/media"
	"github.com/ibom-labs/media-auth/pkg/helius"
	"github.com/ibom-labs/media-auth/pkg/metaplex"
	"github.com/ibom-labs/media-auth/pkg/solanarpc"
)

func main() {
	var (
		configFile string
		addr       string
		debug      bool

		cert    string
		certKey string
	)

	flag.StringVar(&configFile, "config", "", "Configuration file")
	flag.StringVar(&addr, "addr", "", "Address to listen on (overrides config)")
	flag.BoolVar(&debug, "debug", false, "Debug mode")

	flag.StringVar(&cert, "tlscert", "", "Certificate file for TLS")
	flag.StringVar(&certKey, "tlskey", "", "Certificate key for TLS")

	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}

	if debug {
		logger, err = zap.NewDevelopment()
		if err != nil {
			panic(err)
		}
	}

	config, err := appconfig.Load(configFile)
	if err != nil {
		logger.Sugar().Fatalf("Error loading configuration: %v", err)
	}

	if addr != "" {
		config.Server.Address = addr
	}

	if err := config.Validate(); err != nil {
		logger.Sugar().Fatalf("Invalid configuration: %v", err)
	}

	var rpcOpts []solanarpc.Option
	if config.Chain.Commitment != "" {
		rpcOpts = append(rpcOpts, solanarpc.WithCommitment(config.Chain.Commitment))
	}

	rpc := solanarpc.New(config.Chain.RPCURL, rpcOpts...)
	metadata := metaplex.NewClient(rpc)

	var index holders.AssetIndex
	if config.AssetIndex.HeliusAPIKey != "" {
		index = holders.NewHeliusIndex(helius.New(config.AssetIndex.HeliusAPIKey, config.AssetIndex.Devnet))
	} else {
		logger.Warn("no asset index credential configured, collection fallback disabled")
	}

	var validatorOpts []capability.ValidatorOption
	if config.CapabilityStore.Config != nil {
		store, err := config.CapabilityStore.Config.CreateCapabilityStore()
		if err != nil {
			logger.Sugar().Fatalf("Error creating capability store: %v", err)
		}

		validatorOpts = append(validatorOpts, capability.WithStore(store))
	}

	service := mediaauth.MediaServiceImpl{
		Verifier: intent.NewVerifier(config.Media.SignTTL()),
		Authorizer: holders.NewAuthorizer(
			holders.NewChainHoldings(rpc),
			holders.NewMetadataCollections(metadata),
			index,
			logger,
		),
		Issuer:    capability.NewIssuer(config.Media.Secret, config.Media.StreamTTL()),
		Validator: capability.NewValidator(config.Media.Secret, validatorOpts...),
		Media:     media.NewResolver(media.NewChainMetadataSource(metadata)),
		Logger:    logger,
	}

	server := mediaauth.MediaServer{
		Service: service,
	}

	router := mux.NewRouter()
	router.Use(mediaauth.RequestLogger(logger))
	router.Path("/media/sign").Methods("GET").HandlerFunc(server.SignHandler)
	router.Path(mediaauth.DefaultStreamPath).Methods("GET").HandlerFunc(server.StreamHandler)

	logger.Sugar().Infof("Listening on %s", config.Server.Address)

	if cert == "" {
		err = http.ListenAndServe(config.Server.Address, router)
	} else if certKey == "" {
		logger.Sugar().Fatalf("Must provide certficate (-tlscert) and key (-tlskey)")
	} else {
		err = http.ListenAndServeTLS(config.Server.Address, cert, certKey, router)
	}

	if err != nil {
		logger.Sugar().Infof("Error serving: %v", err)
	}
}
