// Package pb holds the hand-generated stand-ins for protoc-gen-go output:
// the message types and service descriptor for the internal MangaService
// RPC (spec §4.4's C4 gRPC internal bridge). There is no .proto source in
// this tree — the wire-compatible generated-code shape is reproduced by
// hand so internal/grpc can depend on google.golang.org/grpc the same way
// a protoc-built client/server pair would.
package pb

// GetMangaRequest is the GetManga RPC request.
type GetMangaRequest struct {
	MangaId string
}

// MangaResponse is the RPC-facing projection of a catalog entry.
type MangaResponse struct {
	Id              string
	Title           string
	Author          string
	Artist          string
	Description     string
	CoverUrl        string
	Status          string
	Type            string
	Genres          []string
	TotalChapters   int32
	Rating          float64
	RatingCount     int32
	PublicationYear int32
}

// SearchRequest is the SearchManga RPC request.
type SearchRequest struct {
	Query  string
	Status string
	Type   string
	Limit  int32
	Offset int32
}

// SearchResponse is the SearchManga RPC response.
type SearchResponse struct {
	Manga  []*MangaResponse
	Total  int32
	Limit  int32
	Offset int32
}

// ProgressRequest is the UpdateProgress RPC request. Status is optional,
// mirroring UpdateProgressRequest's library-side-effect semantics.
type ProgressRequest struct {
	UserId         string
	MangaId        string
	CurrentChapter int32
	Status         string
}

// ProgressResponse is the UpdateProgress RPC response.
type ProgressResponse struct {
	UserId         string
	MangaId        string
	CurrentChapter int32
	LastReadAt     int64
}

// Error is an application-level failure shape (code and message). No RPC
// response in this package carries it: the service returns failures as
// gRPC status errors.
type Error struct {
	Code    string
	Message string
}

// PingRequest/PingResponse support the Ping health-check RPC.
type PingRequest struct{}

type PingResponse struct {
	Ok      bool
	Version string
}
