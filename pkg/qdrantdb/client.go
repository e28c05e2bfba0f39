package qdrantdb

import (
	"github.com/qdrant/go-client/qdrant"
)

type DocumentClient struct {
	Client    *qdrant.Client
	dimension int
}

func NewClient(host string, port int, apiKey string, dimension int) (*DocumentClient, error) {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   host,
		Port:   port, // gRPC port
		APIKey: apiKey,
	})
	if err != nil {
		return nil, err
	}
	return &DocumentClient{Client: client, dimension: dimension}, nil
}

func (c *DocumentClient) Close() error {
	return c.Client.Close()
}
