package main

import (
	"github.com/meridian-vc/metricsync/pkg/affinity"
	"github.com/meridian-vc/metricsync/pkg/visible"
)

func newVisibleClient() visible.Client {
	return visible.NewClient(cfg.Visible.Token, cfg.Visible.CompanyID,
		visible.WithBaseURL(cfg.Visible.BaseURL))
}

func newAffinityClient() affinity.Client {
	return affinity.NewClient(cfg.Affinity.Token,
		affinity.WithBaseURL(cfg.Affinity.BaseURL))
}
