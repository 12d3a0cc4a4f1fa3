package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/rolescope/backend/pkg/graph"
)

func GetHierarchyHandler(c echo.Context) error {
	type getHierarchyResponse struct {
		Groups []*graph.Group `json:"groups"`
		// LeafIndex maps every node id to its group for O(1) lookups on
		// the client.
		LeafIndex map[string]string `json:"leaf_index"`
	}

	s, err := currentSession(c)
	if s == nil {
		return err
	}

	tree := s.Hierarchy()
	leafIndex := make(map[string]string, len(tree.LeafIndex))
	for id, leaf := range tree.LeafIndex {
		leafIndex[id] = leaf.GroupID
	}

	return c.JSON(http.StatusOK, getHierarchyResponse{
		Groups:    tree.Groups,
		LeafIndex: leafIndex,
	})
}
