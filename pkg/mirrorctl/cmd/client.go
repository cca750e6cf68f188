package cmd

import (
	"errors"

	"github.com/containermirror/mirrorctl/pkg/mirrorctl/auth"
	"github.com/containermirror/mirrorctl/pkg/mirrorctl/config"
	"github.com/containermirror/mirrorctl/pkg/mirrorctl/github"
)

func buildClient(rt *runtimeState) (*github.Client, error) {
	token, err := resolveToken(rt)
	if err != nil {
		return nil, err
	}
	options := []github.Option{
		github.WithLogger(rt.Logger()),
		github.WithWriter(rt.Writer()),
	}
	if proxy := rt.Proxy(); proxy != "" {
		options = append(options, github.WithProxy(proxy))
	}
	return github.New(token, options...)
}

func resolveToken(rt *runtimeState) (string, error) {
	if rt.tokenOverride != "" {
		return rt.tokenOverride, nil
	}
	if err := rt.EnsureConfigLoaded(); err != nil {
		return "", err
	}
	store, err := auth.NewStore(rt.TokenStorage(), config.DefaultTokenPath())
	if err != nil {
		return "", err
	}
	token, ok, err := store.Credential()
	if err != nil {
		return "", err
	}
	if ok {
		return token, nil
	}
	// Configs written before token storage landed keep the credential inline.
	if rt.cfg != nil && rt.cfg.Token != "" {
		return rt.cfg.Token, nil
	}
	return "", errors.New("not authenticated; run 'mirrorctl auth login'")
}

func tokenStore(rt *runtimeState) (auth.TokenStore, error) {
	return auth.NewStore(rt.TokenStorage(), config.DefaultTokenPath())
}
