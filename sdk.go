/*
Copyright 2025 The Crossplane Authors.

Licensed under the Apache License, Version 2.0 (the "License"); you may not use
this file except in compliance with the License. You may obtain a copy of the
License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software distributed
under the License is distributed on an "AS IS" BASIS, WITHOUT WARRANTIES OR
CONDITIONS OF ANY KIND, either express or implied. See the License for the
specific language governing permissions and limitations under the License.
*/

// Package function is an SDK for building composition functions - gRPC
// services Crossplane calls to determine what resources it should create when
// a composite resource is created.
package function

import (
	"context"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/crossplane/crossplane-runtime/pkg/certificates"
	"github.com/crossplane/crossplane-runtime/pkg/errors"
	"github.com/crossplane/crossplane-runtime/pkg/logging"

	fnv1 "github.com/crossplane/crossplane/v2/proto/fn/v1"
)

// Error strings.
const (
	errListen      = "cannot listen for gRPC connections"
	errServe       = "cannot serve gRPC API"
	errLoadTLS     = "cannot load TLS certificates"
	errBuildLogger = "cannot build zap logger"
)

// Default network and address on which to listen for RunFunctionRequests.
const (
	DefaultNetwork = "tcp"
	DefaultAddress = "0.0.0.0:9443"
)

// TLS file names within the certificate directory.
const (
	tlsCertFile = "tls.crt"
	tlsKeyFile  = "tls.key"
	caCertFile  = "ca.crt"
)

// ServeOptions configure how a composition function is served.
type ServeOptions struct {
	network  string
	address  string
	insecure bool
	certsDir string
	log      logging.Logger
}

// A ServeOption configures how a composition function is served.
type ServeOption func(o *ServeOptions)

// Listen specifies the network and address at which the function should
// listen for RunFunctionRequests.
func Listen(network, address string) ServeOption {
	return func(o *ServeOptions) {
		o.network = network
		o.address = address
	}
}

// MTLSCertificates specifies a directory from which to load mTLS credentials.
// The directory must contain the server's certificate (tls.crt) and private
// key (tls.key), as well as a CA certificate (ca.crt) used to verify client
// certificates, if any are presented.
func MTLSCertificates(dir string) ServeOption {
	return func(o *ServeOptions) {
		o.certsDir = dir
	}
}

// Insecure specifies whether the function should listen without transport
// security. Intended for local development only - when insecure is true any
// mTLS certificate directory is ignored.
func Insecure(insecure bool) ServeOption {
	return func(o *ServeOptions) {
		o.insecure = insecure
	}
}

// WithLogger specifies which logger the function should use.
func WithLogger(log logging.Logger) ServeOption {
	return func(o *ServeOptions) {
		o.log = log
	}
}

// Serve the supplied function as a gRPC API. Any error the function returns is
// converted into an in-band fatal result, so from the perspective of the gRPC
// transport every invocation succeeds. Serve blocks until it receives SIGINT
// or SIGTERM, then stops gracefully.
func Serve(fn fnv1.FunctionRunnerServiceServer, o ...ServeOption) error {
	so := &ServeOptions{
		network: DefaultNetwork,
		address: DefaultAddress,
		log:     logging.NewNopLogger(),
	}
	for _, opt := range o {
		opt(so)
	}

	creds := insecure.NewCredentials()
	if !so.insecure && so.certsDir != "" {
		cfg, err := certificates.LoadMTLSConfig(
			filepath.Join(so.certsDir, caCertFile),
			filepath.Join(so.certsDir, tlsCertFile),
			filepath.Join(so.certsDir, tlsKeyFile),
			false)
		if err != nil {
			return errors.Wrap(err, errLoadTLS)
		}
		creds = credentials.NewTLS(cfg)
	}

	lis, err := net.Listen(so.network, so.address)
	if err != nil {
		return errors.Wrap(err, errListen)
	}

	srv := grpc.NewServer(grpc.Creds(creds))
	fnv1.RegisterFunctionRunnerServiceServer(srv, NewRunner(fn, WithRunnerLogger(so.log)))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		so.log.Info("Stopping gRPC API", "reason", ctx.Err())
		srv.GracefulStop()
	}()

	so.log.Info("Listening for RunFunctionRequests", "network", so.network, "address", so.address, "insecure", so.insecure || so.certsDir == "")
	return errors.Wrap(srv.Serve(lis), errServe)
}

// NewLogger returns a new logger suitable for use by a composition function.
// Debug mode emits debug logs in addition to info logs, in a human-friendly
// format.
func NewLogger(debug bool) (logging.Logger, error) {
	cfg := zap.NewProductionConfig()
	if debug {
		cfg = zap.NewDevelopmentConfig()
	}
	zl, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return nil, errors.Wrap(err, errBuildLogger)
	}
	return logging.NewLogrLogger(zapr.NewLogger(zl)), nil
}
