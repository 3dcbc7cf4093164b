package server

type PlayerSummary struct {
	Name  string `json:"name"`
	ID    int64  `json:"id"`
	Shots int64  `json:"shots"`
}

type PlayersResponse struct {
	Total   int64           `json:"total"`
	Players []PlayerSummary `json:"players"`
}

type LeafPair struct {
	Path        []string `json:"path"`
	Description string   `json:"description"`
	Made        int      `json:"made"`
	Missed      int      `json:"missed"`
	Percent     float64  `json:"percent"`
}

type ReportResponse struct {
	RunID        string     `json:"run_id"`
	Subject      string     `json:"subject"`
	Ingested     int        `json:"ingested"`
	Dropped      int        `json:"dropped"`
	Unclassified int        `json:"unclassified"`
	Best         LeafPair   `json:"best"`
	Worst        LeafPair   `json:"worst"`
	LeafPairs    []LeafPair `json:"leaf_pairs"`
}
