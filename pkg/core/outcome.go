package core

// FetchKind classifies the result of fetching a single remote object.
type FetchKind int

const (
	// FetchOK means the object transferred successfully and Raw holds its bytes.
	FetchOK FetchKind = iota
	// FetchTooLarge means the store refused the object for exceeding the size ceiling.
	FetchTooLarge
	// FetchInaccessible means the object does not exist, access was denied, or
	// the location does not address the object store at all.
	FetchInaccessible
	// FetchTransient means a client or network level failure; Message carries detail.
	FetchTransient
)

// FetchOutcome is the tagged per-location result of the fetch stage.
// Failure classification travels in the value rather than an error so the
// orchestrator's batch loop can handle every case explicitly.
type FetchOutcome struct {
	Kind    FetchKind
	Raw     []byte
	Message string
}

// Fetched wraps successfully transferred bytes.
func Fetched(raw []byte) FetchOutcome {
	return FetchOutcome{Kind: FetchOK, Raw: raw}
}

// TransientError wraps a client/network failure message.
func TransientError(msg string) FetchOutcome {
	return FetchOutcome{Kind: FetchTransient, Message: msg}
}

// ArtifactKind classifies a decoded artifact.
type ArtifactKind int

const (
	// ArtifactValue means Content holds the stringified decoded value.
	ArtifactValue ArtifactKind = iota
	// ArtifactTooLarge means the payload exceeded the decode size ceiling.
	ArtifactTooLarge
	// ArtifactInaccessible means the object's content could not be obtained.
	ArtifactInaccessible
)

// DecodedArtifact is the tagged per-location result of the decode stage.
type DecodedArtifact struct {
	Kind    ArtifactKind
	Content string
}

// Value wraps stringified decoded content.
func Value(content string) DecodedArtifact {
	return DecodedArtifact{Kind: ArtifactValue, Content: content}
}
