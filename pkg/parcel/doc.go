// Package parcel is the Go client for the Parcel data governance platform.
//
// A Client is constructed from a Config carrying a TokenSource; the SDK
// acquires and renews access tokens transparently and exposes the platform's
// resources as typed services:
//
//	client, err := parcel.New(parcel.Config{
//		TokenSource: tokenx.SelfIssuedTokenSource{
//			Principal:  "acme-app",
//			PrivateKey: key,
//		},
//	})
//	if err != nil {
//		return err
//	}
//
//	doc, err := client.Documents.Upload(ctx, parcel.DocumentUpload{
//		Details: parcel.DocumentDetails{Title: "report"},
//	}, file)
//
// All calls take a context.Context and return typed errors from pkg/httpx
// and pkg/tokenx.
package parcel
