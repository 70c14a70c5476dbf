package celebrity

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	// humanQID is the Wikidata entity for "human" (instance-of target).
	humanQID = "Q5"

	// Wikidata property ids: instance-of, date of birth, date of death.
	propInstanceOf  = "P31"
	propDateOfBirth = "P569"
	propDateOfDeath = "P570"

	defaultThumbSize = 200
)

// Client implements Provider against the MediaWiki action API and the
// Wikidata wbgetentities API.
type Client struct {
	httpClient   *http.Client
	wikipediaURL string
	wikidataURL  string
	language     string
}

func NewClient(wikipediaURL, wikidataURL, language string) *Client {
	return &Client{
		httpClient:   &http.Client{Timeout: 15 * time.Second},
		wikipediaURL: wikipediaURL,
		wikidataURL:  wikidataURL,
		language:     language,
	}
}

func (c *Client) getJSON(ctx context.Context, base string, params url.Values, dest any) error {
	reqURL := base + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return &TransportError{URL: base, Err: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &TransportError{URL: base, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &TransportError{URL: base, StatusCode: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return &TransportError{URL: base, Err: err}
	}
	return nil
}

func (c *Client) Search(ctx context.Context, text string, limit int) ([]SearchHit, error) {
	params := url.Values{
		"action":   {"query"},
		"list":     {"search"},
		"srsearch": {text},
		"srlimit":  {strconv.Itoa(limit)},
		"format":   {"json"},
		"origin":   {"*"},
	}

	var body struct {
		Query struct {
			Search []struct {
				PageID int64  `json:"pageid"`
				Title  string `json:"title"`
			} `json:"search"`
		} `json:"query"`
	}
	if err := c.getJSON(ctx, c.wikipediaURL, params, &body); err != nil {
		return nil, err
	}

	hits := make([]SearchHit, 0, len(body.Query.Search))
	for _, s := range body.Query.Search {
		hits = append(hits, SearchHit{PageID: s.PageID, Title: s.Title})
	}
	return hits, nil
}

func (c *Client) PageMeta(ctx context.Context, pageIDs []int64) (map[int64]PageMeta, error) {
	ids := make([]string, len(pageIDs))
	for i, id := range pageIDs {
		ids[i] = strconv.FormatInt(id, 10)
	}

	params := url.Values{
		"action":      {"query"},
		"prop":        {"pageprops|pageimages"},
		"ppprop":      {"wikibase_item|disambiguation"},
		"piprop":      {"thumbnail"},
		"pithumbsize": {strconv.Itoa(defaultThumbSize)},
		"pageids":     {strings.Join(ids, "|")},
		"format":      {"json"},
		"origin":      {"*"},
	}

	var body struct {
		Query struct {
			Pages map[string]struct {
				PageID    int64  `json:"pageid"`
				Title     string `json:"title"`
				PageProps struct {
					WikibaseItem   string           `json:"wikibase_item"`
					Disambiguation *json.RawMessage `json:"disambiguation"`
				} `json:"pageprops"`
				Thumbnail struct {
					Source string `json:"source"`
				} `json:"thumbnail"`
			} `json:"pages"`
		} `json:"query"`
	}
	if err := c.getJSON(ctx, c.wikipediaURL, params, &body); err != nil {
		return nil, err
	}

	pages := make(map[int64]PageMeta, len(body.Query.Pages))
	for _, p := range body.Query.Pages {
		pages[p.PageID] = PageMeta{
			PageID:         p.PageID,
			Title:          p.Title,
			Disambiguation: p.PageProps.Disambiguation != nil,
			QID:            p.PageProps.WikibaseItem,
			ThumbnailURL:   p.Thumbnail.Source,
		}
	}
	return pages, nil
}

func (c *Client) Entities(ctx context.Context, qids []string) (map[string]Entity, error) {
	params := url.Values{
		"action":    {"wbgetentities"},
		"ids":       {strings.Join(qids, "|")},
		"props":     {"labels|claims"},
		"languages": {c.language},
		"format":    {"json"},
		"origin":    {"*"},
	}

	var body struct {
		Entities map[string]struct {
			Labels map[string]struct {
				Value string `json:"value"`
			} `json:"labels"`
			Claims map[string][]wdClaim `json:"claims"`
		} `json:"entities"`
	}
	if err := c.getJSON(ctx, c.wikidataURL, params, &body); err != nil {
		return nil, err
	}

	entities := make(map[string]Entity, len(body.Entities))
	for qid, e := range body.Entities {
		entities[qid] = Entity{
			Human:     isHuman(e.Claims[propInstanceOf]),
			Dead:      len(e.Claims[propDateOfDeath]) > 0,
			BirthTime: claimTime(e.Claims[propDateOfBirth]),
			Label:     e.Labels[c.language].Value,
		}
	}
	return entities, nil
}

type wdClaim struct {
	MainSnak struct {
		DataValue struct {
			Value json.RawMessage `json:"value"`
		} `json:"datavalue"`
	} `json:"mainsnak"`
}

func isHuman(claims []wdClaim) bool {
	for _, c := range claims {
		var v struct {
			ID string `json:"id"`
		}
		if json.Unmarshal(c.MainSnak.DataValue.Value, &v) == nil && v.ID == humanQID {
			return true
		}
	}
	return false
}

func claimTime(claims []wdClaim) string {
	if len(claims) == 0 {
		return ""
	}
	var v struct {
		Time string `json:"time"`
	}
	if json.Unmarshal(claims[0].MainSnak.DataValue.Value, &v) != nil {
		return ""
	}
	return v.Time
}
