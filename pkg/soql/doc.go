// Package soql provides types, interfaces, and helpers for running SOQL
// queries against the Salesforce REST and Tooling query APIs.
//
// # Overview
//
// The soql package defines the domain types (Credentials, QueryResult,
// AggregatedResult, Table) and the Client interface for executing queries.
// A concrete implementation is provided by the sfclient package, which wires
// configuration, transport, and authentication. Most consumers should import
// sfclient to construct a client and then interact with the interfaces
// exposed here.
//
// Getting a client
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
//	  cli, err := sfclient.New(ctx, &soql.Config{
//	    InstanceURL: "my-org.my.salesforce.com",
//	    AccessToken: "00D...session",
//	  })
//	  if err != nil { log.Fatal(err) }
//
//	  result, err := cli.Query(ctx, "SELECT Id, Name FROM Account", nil)
//	  if err != nil { log.Fatal(err) }
//	  _ = result
//	}
//
// # Queries and pagination
//
// Use QueryOptions to select the API version, the Tooling API surface, and
// the pagination mode. By default only the first page is fetched; with
// WithAllPages the client follows nextRecordsUrl references until the
// server reports the result set complete. Pages are always fetched one at a
// time, never concurrently. The package also provides a lazy iterator:
//
//	it, err := cli.Iterate(ctx, "SELECT Id FROM Contact", soql.NewQueryOptions().WithAllPages())
//	for it.HasNext() {
//	  record, err := it.Next()
//	  if err != nil { break }
//	  _ = record
//	}
//
// # Results
//
// Query produces an AggregatedResult holding every fetched record in server
// order. Table() materializes it into a column-aligned view whose columns are
// the union of the field names seen across records, and WriteCSV renders that
// view as UTF-8 CSV with a header row. An empty result set is not an error;
// check Empty() on the aggregate.
//
// # Errors
//
// Failed fetches are represented by FetchError, which carries the HTTP status
// and the raw response body along with any parsed API error details. Helpers
// such as IsUnauthorized, IsMalformedQuery, and IsRateLimited make it easy to
// branch on common failure cases. Missing credential fields surface as
// CredentialError, and network-level failures as TransportError.
//
// # Export
//
// The Sink abstraction fans results out to files, standard output, or a NATS
// subject, and BatchExecutor runs several independent queries concurrently
// while each query's own pages remain sequential.
package soql
