package domain

// MetadataDocument is the off-chain token metadata JSON referenced by the
// on-chain metadata account's URI.
type MetadataDocument struct {
	Name        string             `json:"name"`
	Symbol      string             `json:"symbol"`
	Description string             `json:"description"`
	Image       string             `json:"image"` // empty string when no logo, never null
	ExternalURL string             `json:"external_url"`
	Properties  MetadataProperties `json:"properties"`
	Links       MetadataLinks      `json:"links"`
}

// MetadataProperties groups attached files, category and creator shares.
type MetadataProperties struct {
	Files    []MetadataFile    `json:"files"`
	Category string            `json:"category"`
	Creators []MetadataCreator `json:"creators"`
}

// MetadataFile references one uploaded asset.
type MetadataFile struct {
	URI  string `json:"uri"`
	Type string `json:"type"`
}

// MetadataCreator attributes a share of the token to an address.
type MetadataCreator struct {
	Address string `json:"address"`
	Share   int    `json:"share"`
}

// MetadataLinks carries the project's social links.
type MetadataLinks struct {
	Website  string `json:"website"`
	Twitter  string `json:"twitter"`
	Telegram string `json:"telegram"`
	Discord  string `json:"discord"`
}
