package cli

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/dwagelaar/jtrust/src/certrepo"
	"github.com/dwagelaar/jtrust/src/report"
	"github.com/dwagelaar/jtrust/src/revocation"
	"github.com/dwagelaar/jtrust/src/trust"
	"github.com/spf13/cobra"
)

// ErrInputFileRequired is returned when neither an input file nor a
// --host was given to validate.
var ErrInputFileRequired = errors.New("cli: input certificate chain file or --host is required")

var (
	rootsFile      string
	host           string
	port           int
	useOCSP        bool
	useCRL         bool
	validationDate string
	jsonOutput     bool
	treeOutput     bool
	tableOutput    bool
)

// Execute runs the jtrust-verify root command and returns the outcome
// of the validation itself (not cobra's own argument-parsing errors,
// which it returns directly).
func Execute(ctx context.Context, version string, log trust.Logger) error {
	var runErr error

	rootCmd := &cobra.Command{
		Use:     "jtrust-verify [INPUT_FILE]",
		Short:   "Validates an X.509 certificate chain against a trust anchor set",
		Version: version,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runErr = execCli(ctx, args, version, log)
			return nil
		},
	}

	rootCmd.Flags().StringVarP(&rootsFile, "roots", "r", "", "PEM file of trust anchors (without it no chain is trusted)")
	rootCmd.Flags().StringVar(&host, "host", "", "fetch the chain by dialing host:port instead of reading a file")
	rootCmd.Flags().IntVar(&port, "port", 443, "port to use with --host")
	rootCmd.Flags().BoolVar(&useOCSP, "ocsp", true, "consult OCSP responders for revocation status")
	rootCmd.Flags().BoolVar(&useCRL, "crl", true, "consult CRL distribution points for revocation status")
	rootCmd.Flags().StringVar(&validationDate, "at", "", "validate as of this RFC3339 timestamp (default: now)")
	rootCmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "emit a JSON validation report")
	rootCmd.Flags().BoolVarP(&treeOutput, "tree", "t", false, "display the chain as an ASCII tree")
	rootCmd.Flags().BoolVar(&tableOutput, "table", false, "display the chain as a markdown table")

	if err := rootCmd.Execute(); err != nil {
		return err
	}
	return runErr
}

func execCli(ctx context.Context, args []string, version string, log trust.Logger) error {
	decoder := certrepo.NewDecoder()

	var chain []*x509.Certificate
	switch {
	case host != "":
		peerCerts, err := dialRemoteChain(ctx, host, port)
		if err != nil {
			return fmt.Errorf("cli: fetching remote chain: %w", err)
		}
		chain = peerCerts
	case len(args) == 1:
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("cli: reading input file: %w", err)
		}
		chain, err = decoder.DecodeMultiple(data)
		if err != nil {
			return fmt.Errorf("cli: decoding certificate chain: %w", err)
		}
	default:
		return ErrInputFileRequired
	}

	if len(chain) == 0 {
		return errors.New("cli: no certificates found in input")
	}

	repo := certrepo.NewRepository()
	if rootsFile != "" {
		data, err := os.ReadFile(rootsFile)
		if err != nil {
			return fmt.Errorf("cli: reading trust roots file: %w", err)
		}
		if _, err := repo.LoadTrustAnchors(data); err != nil {
			return fmt.Errorf("cli: decoding trust roots: %w", err)
		}
	}

	validator := trust.NewTrustValidator(repo)
	validator.SetLogger(log)

	decorator := &trust.TrustValidatorDecorator{}
	if useOCSP {
		decorator.OcspRepository = revocation.NewHTTPOcspRepository(version)
	}
	if useCRL {
		decorator.CrlRepository = revocation.NewHTTPCrlRepository(version)
	}
	decorator.AddDefaultTrustLinkerConfig(validator)

	when := time.Now().UTC()
	if validationDate != "" {
		parsed, err := time.Parse(time.RFC3339, validationDate)
		if err != nil {
			return fmt.Errorf("cli: invalid --at value: %w", err)
		}
		when = parsed.UTC()
	}

	revocationData := trust.NewRevocationData()
	validationErr := validator.IsTrustedWithEvidence(chain, when, revocationData)

	rep := report.Build(chain, revocationData, validationErr)

	switch {
	case jsonOutput:
		data, err := rep.ToJSON()
		if err != nil {
			return fmt.Errorf("cli: marshaling report: %w", err)
		}
		fmt.Println(string(data))
	case treeOutput:
		fmt.Print(rep.RenderASCIITree())
	case tableOutput:
		fmt.Print(rep.RenderTable())
	default:
		if validationErr == nil {
			fmt.Println("TRUSTED")
		} else {
			fmt.Printf("NOT TRUSTED: %v\n", validationErr)
		}
	}

	return validationErr
}

// dialRemoteChain connects to hostname:port and returns the certificate
// chain presented during the TLS handshake, without verifying it -
// verification is TrustValidator's job.
func dialRemoteChain(ctx context.Context, hostname string, port int) ([]*x509.Certificate, error) {
	dialer := &net.Dialer{}
	if deadline, ok := ctx.Deadline(); ok {
		dialer.Deadline = deadline
	}

	conn, err := tls.DialWithDialer(dialer, "tcp", fmt.Sprintf("%s:%d", hostname, port),
		&tls.Config{InsecureSkipVerify: true})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s:%d: %w", hostname, port, err)
	}
	defer conn.Close()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	peerCerts := conn.ConnectionState().PeerCertificates
	if len(peerCerts) == 0 {
		return nil, errors.New("no certificates received from server")
	}
	return peerCerts, nil
}
