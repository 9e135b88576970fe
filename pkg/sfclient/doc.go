// Package sfclient provides the primary entry point for constructing a
// Salesforce SOQL query client that implements the soql.Client interface.
//
// It layers configuration, HTTP transport, and credential resolution on top
// of the query, pagination, and result types defined in the soql package.
// Most applications should import sfclient to build a client, then use the
// returned soql.Client to run queries.
//
// Quick start
//
//	import (
//	  "context"
//	  "log"
//
//	  "github.com/fivetwenty-io/soql/pkg/sfclient"
//	  "github.com/fivetwenty-io/soql/pkg/soql"
//	)
//
//	func example() {
//	  ctx := context.Background()
//
//	  // With a session token you already have:
//	  cli, err := sfclient.New(ctx, &soql.Config{
//	    InstanceURL: "my-org.my.salesforce.com", // scheme added automatically
//	    AccessToken: "00D...session",
//	  })
//	  if err != nil { log.Fatal(err) }
//
//	  // Or directly from the output of `sf org display --json`. Both
//	  // snake_case and camelCase key names are accepted.
//	  cli, err = sfclient.NewFromCredentials(ctx, []byte(`{
//	    "accessToken": "00D...session",
//	    "instanceUrl": "https://my-org.my.salesforce.com"
//	  }`))
//	  if err != nil { log.Fatal(err) }
//
//	  result, err := cli.Query(ctx, "SELECT Id, Name FROM Account LIMIT 10", nil)
//	  if err != nil { log.Fatal(err) }
//
//	  _ = result.Table() // column-aligned view, ready for CSV export
//	}
//
// # Sessions
//
// The client holds a single static session token. Token refresh is out of
// scope; when a session expires the next query fails with a soql.FetchError
// carrying the server status and body, and the caller supplies a fresh
// credential document.
//
// # Helpers
//
// The package also provides convenience constructors NewWithToken,
// NewFromCredentials, and NewFromCredentialsFile that wrap New with the
// appropriate configuration.
package sfclient
