package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"example.com/shipstores/config"
	"example.com/shipstores/internal/models"

	"github.com/elastic/go-elasticsearch/v7"
	"github.com/elastic/go-elasticsearch/v7/esapi"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// ElasticClient maintains the catalogue search index. Indexing is a
// best-effort secondary call: a failed index write never rolls back the
// database change it mirrors.
type ElasticClient struct {
	client *elasticsearch.Client
	config config.ElasticConfig
}

// NewElasticClient creates a new Elasticsearch client
func NewElasticClient(cfg config.ElasticConfig) (*ElasticClient, error) {
	esConfig := elasticsearch.Config{
		Addresses: []string{cfg.URL},
		Username:  cfg.Username,
		Password:  cfg.Password,
	}

	client, err := elasticsearch.NewClient(esConfig)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create Elasticsearch client")
	}

	return &ElasticClient{
		client: client,
		config: cfg,
	}, nil
}

// IndexItem indexes a catalogue item document.
func (c *ElasticClient) IndexItem(ctx context.Context, item *models.Item) error {
	doc := map[string]interface{}{
		"id":           item.ID,
		"name":         item.Name,
		"catalogue_nr": item.CatalogueNr,
		"desc_short":   item.DescShort,
		"unit":         item.Unit,
		"is_active":    item.IsActive,
		"created_at":   item.CreatedAt,
	}
	if item.Category != nil {
		doc["category"] = item.Category.Name
	}
	if item.Manufacturer != nil {
		doc["manufacturer"] = item.Manufacturer.Name
	}
	if item.Supplier != nil {
		doc["supplier"] = item.Supplier.Name
	}
	if len(item.Tags) > 0 {
		slugs := make([]string, len(item.Tags))
		for i, tag := range item.Tags {
			slugs[i] = tag.Slug
		}
		doc["tags"] = slugs
	}

	docJSON, err := json.Marshal(doc)
	if err != nil {
		return errors.Wrap(err, "failed to marshal item document")
	}

	req := esapi.IndexRequest{
		Index:      config.FormatIndex(c.config, c.config.Index),
		DocumentID: fmt.Sprintf("%d", item.ID),
		Body:       bytes.NewReader(docJSON),
	}

	res, err := req.Do(ctx, c.client)
	if err != nil {
		return errors.Wrap(err, "failed to execute Elasticsearch index request")
	}
	defer res.Body.Close()

	if res.IsError() {
		var e map[string]interface{}
		if err := json.NewDecoder(res.Body).Decode(&e); err != nil {
			return errors.Wrap(err, "failed to parse Elasticsearch error response")
		}
		return errors.Errorf("Elasticsearch index error: %v", e)
	}

	log.Debug().Uint("item_id", item.ID).Msg("item indexed")
	return nil
}

// DeleteItem removes an item document from the index.
func (c *ElasticClient) DeleteItem(ctx context.Context, itemID uint) error {
	req := esapi.DeleteRequest{
		Index:      config.FormatIndex(c.config, c.config.Index),
		DocumentID: fmt.Sprintf("%d", itemID),
	}

	res, err := req.Do(ctx, c.client)
	if err != nil {
		return errors.Wrap(err, "failed to execute Elasticsearch delete request")
	}
	defer res.Body.Close()

	if res.IsError() && res.StatusCode != 404 {
		return errors.Errorf("Elasticsearch delete error: %s", res.String())
	}
	return nil
}
