package testhelpers

import (
	"context"
	"fmt"
	"net/url"

	"github.com/ClickHouse/clickhouse-go/v2"
	tc "github.com/testcontainers/testcontainers-go"
	tcclickhouse "github.com/testcontainers/testcontainers-go/modules/clickhouse"

	"github.com/kndndrj/chhttp/core"
)

type ClickHouseContainer struct {
	*tcclickhouse.ClickHouseContainer
	HTTPURL string
	Client  *core.Client
}

// NewClickHouseContainer starts a clickhouse server, seeds it over the
// native protocol and returns an HTTP client pointed at it. params.URL is
// overwritten when empty.
func NewClickHouseContainer(ctx context.Context, params *core.ConnectionParams, opts ...core.ClientOption) (*ClickHouseContainer, error) {
	ctr, err := tcclickhouse.Run(
		ctx,
		"clickhouse/clickhouse-server:25.1-alpine",
		tc.CustomizeRequest(tc.GenericContainerRequest{
			ProviderType: GetContainerProvider(),
		}),
		tcclickhouse.WithUsername("admin"),
		tcclickhouse.WithPassword(""),
		tcclickhouse.WithDatabase("dev"),
	)
	if err != nil {
		return nil, err
	}

	if err := seed(ctx, ctr); err != nil {
		return nil, err
	}

	host, err := ctr.Host(ctx)
	if err != nil {
		return nil, err
	}
	port, err := ctr.MappedPort(ctx, "8123/tcp") // tcclickhouse.HttpPort (exported only in v0.35+, which needs go1.22)
	if err != nil {
		return nil, err
	}

	httpURL := (&url.URL{
		Scheme: "http",
		User:   url.UserPassword(ctr.User, ctr.Password),
		Host:   fmt.Sprintf("%s:%s", host, port.Port()),
	}).String()

	if params.URL == "" {
		params.URL = httpURL
	}

	return &ClickHouseContainer{
		ClickHouseContainer: ctr,
		HTTPURL:             httpURL,
		Client:              core.NewFromParams(params, opts...),
	}, nil
}

// NewClient helper function to create another client against the container.
func (c *ClickHouseContainer) NewClient(params *core.ConnectionParams, opts ...core.ClientOption) *core.Client {
	if params.URL == "" {
		params.URL = c.HTTPURL
	}
	return core.NewFromParams(params, opts...)
}

func seed(ctx context.Context, ctr *tcclickhouse.ClickHouseContainer) error {
	dsn, err := ctr.ConnectionString(ctx)
	if err != nil {
		return err
	}

	options, err := clickhouse.ParseDSN(dsn)
	if err != nil {
		return fmt.Errorf("clickhouse.ParseDSN: %w", err)
	}

	db := clickhouse.OpenDB(options)
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("db.PingContext: %w", err)
	}

	statements, err := GetTestDataStatements("clickhouse_seed.sql")
	if err != nil {
		return err
	}

	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("db.ExecContext: %w", err)
		}
	}

	return nil
}
