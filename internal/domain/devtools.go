package domain

// SeedDescriptionPrefix tags dev-generated records so they can be
// purged without touching real ledger data.
const SeedDescriptionPrefix = "[seed]"

// DevSeedRecordsRequest is the body of POST /v1/dev/seed-records.
type DevSeedRecordsRequest struct {
	Count  int  `json:"count"`
	Months int  `json:"months,omitempty"`
	Reset  bool `json:"reset,omitempty"`
}

// DevSeedRecordsResponse reports what the seeding run produced.
type DevSeedRecordsResponse struct {
	Success   bool   `json:"success"`
	Generated int    `json:"generated"`
	Message   string `json:"message"`
}
