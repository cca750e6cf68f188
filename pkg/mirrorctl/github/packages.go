package github

import (
	"context"
	"fmt"
	"net/url"
)

// PackageVersion is one published version of a container package, carrying
// the tag set GHCR attached to it.
type PackageVersion struct {
	ID       int64 `json:"id"`
	Metadata struct {
		Container struct {
			Tags []string `json:"tags"`
		} `json:"container"`
	} `json:"metadata"`
}

func (v PackageVersion) HasTag(tag string) bool {
	for _, t := range v.Metadata.Container.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

type PackageService struct {
	client *Client
}

// Versions lists every version of the named container package under the
// authenticated user. A 404 means the package has never existed and yields
// an empty list, not an error.
func (s *PackageService) Versions(ctx context.Context, name string) ([]PackageVersion, error) {
	login, err := s.client.Identity(ctx)
	if err != nil {
		return nil, err
	}
	req, err := s.client.request(ctx)
	if err != nil {
		return nil, err
	}
	var versions []PackageVersion
	resp, err := req.SetResult(&versions).
		Get(fmt.Sprintf("/users/%s/packages/container/%s/versions", login, url.PathEscape(name)))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() == 404 {
		return nil, nil
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("failed to list package versions: %w", newAPIError(resp))
	}
	return versions, nil
}

func (s *PackageService) VersionExists(ctx context.Context, name, tag string) (bool, error) {
	versions, err := s.Versions(ctx, name)
	if err != nil {
		return false, err
	}
	for _, v := range versions {
		if v.HasTag(tag) {
			return true, nil
		}
	}
	return false, nil
}

// DeleteVersion removes the version of a package carrying the given tag.
// When the match is the package's only version GitHub refuses to delete it
// individually, so the whole package is deleted instead. A package or tag
// that does not exist is not an error.
func (s *PackageService) DeleteVersion(ctx context.Context, name, tag string) error {
	versions, err := s.Versions(ctx, name)
	if err != nil {
		return err
	}
	for _, v := range versions {
		if !v.HasTag(tag) {
			continue
		}
		if len(versions) == 1 {
			return s.DeletePackage(ctx, name)
		}
		login, err := s.client.Identity(ctx)
		if err != nil {
			return err
		}
		req, err := s.client.request(ctx)
		if err != nil {
			return err
		}
		resp, err := req.Delete(fmt.Sprintf("/users/%s/packages/container/%s/versions/%d",
			login, url.PathEscape(name), v.ID))
		if err != nil {
			return err
		}
		if !resp.IsSuccess() && resp.StatusCode() != 404 {
			return fmt.Errorf("failed to delete package version: %w", newAPIError(resp))
		}
		return nil
	}
	return nil
}

func (s *PackageService) DeletePackage(ctx context.Context, name string) error {
	login, err := s.client.Identity(ctx)
	if err != nil {
		return err
	}
	req, err := s.client.request(ctx)
	if err != nil {
		return err
	}
	resp, err := req.Delete(fmt.Sprintf("/users/%s/packages/container/%s", login, url.PathEscape(name)))
	if err != nil {
		return err
	}
	if !resp.IsSuccess() && resp.StatusCode() != 404 {
		return fmt.Errorf("failed to delete package: %w", newAPIError(resp))
	}
	return nil
}
