// Package depgraph persists, per collection, dependency nodes (files and
// external modules) and directed edges (imports), and answers
// neighborhood/BFS queries, per spec.md §4.3. Same physical database as
// internal/snapshot (internal/dbstore), following the teacher's
// store.Store.WithTransaction pattern for batched writes.
package depgraph

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/agentindex/codeindexd/internal/dbstore"
)

// Node is a dependency-graph node: a project file, or (IsExternal) a
// synthetic node standing in for an external module.
type Node struct {
	FilePath    string // external nodes use the package name as FilePath
	ModulePath  string
	Lang        string
	IsExternal  bool
	PackageName *string
	Hash        string
}

// Edge is a directed import edge.
type Edge struct {
	SourceFile    string
	TargetModule  string
	LineNumber    int
	TargetFile    *string // nil when unresolved/external
	ImportType    string  // default|named|namespace|dynamic|require
	ImportedNames []string
	IsResolved    bool
}

func marshalNames(names []string) any {
	if len(names) == 0 {
		return nil
	}
	b, _ := json.Marshal(names)
	return string(b)
}

func unmarshalNames(raw sql.NullString) []string {
	if !raw.Valid || raw.String == "" {
		return nil
	}
	var names []string
	_ = json.Unmarshal([]byte(raw.String), &names)
	return names
}

// UpsertNode inserts or replaces a single node.
func UpsertNode(q dbstore.Querier, collectionName string, n Node) error {
	_, err := q.Exec(
		`INSERT INTO dependency_nodes (collection_id, file_path, module_path, lang, is_external, package_name, hash)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(collection_id, file_path) DO UPDATE SET
		   module_path = excluded.module_path, lang = excluded.lang,
		   is_external = excluded.is_external, package_name = excluded.package_name,
		   hash = excluded.hash`,
		collectionName, n.FilePath, n.ModulePath, n.Lang, boolToInt(n.IsExternal), n.PackageName, n.Hash,
	)
	if err != nil {
		return fmt.Errorf("upsert node %s: %w", n.FilePath, err)
	}
	return nil
}

// UpsertNodes upserts a batch of nodes within one transaction.
func UpsertNodes(db *dbstore.DB, collectionName string, nodes []Node) error {
	return db.WithTransaction(func(tx *dbstore.DB) error {
		for _, n := range nodes {
			if err := UpsertNode(tx.Q(), collectionName, n); err != nil {
				return err
			}
		}
		return nil
	})
}

// ReplaceOutgoingEdges deletes all edges sourced from sourceFile and inserts
// the given replacement set, in one transaction — spec.md §4.9 step 5
// ("replace outgoing edges").
func ReplaceOutgoingEdges(db *dbstore.DB, collectionName, sourceFile string, edges []Edge) error {
	return db.WithTransaction(func(tx *dbstore.DB) error {
		q := tx.Q()
		if _, err := q.Exec(
			`DELETE FROM dependency_edges WHERE collection_id = ? AND source_file = ?`,
			collectionName, sourceFile,
		); err != nil {
			return fmt.Errorf("clear outgoing edges for %s: %w", sourceFile, err)
		}
		for _, e := range edges {
			if _, err := q.Exec(
				`INSERT INTO dependency_edges
				   (collection_id, source_file, target_module, line_number, target_file, import_type, imported_names, is_resolved)
				 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
				collectionName, e.SourceFile, e.TargetModule, e.LineNumber, e.TargetFile,
				e.ImportType, marshalNames(e.ImportedNames), boolToInt(e.IsResolved),
			); err != nil {
				return fmt.Errorf("insert edge %s->%s: %w", e.SourceFile, e.TargetModule, err)
			}
		}
		return nil
	})
}

// GetNodesByCollection returns every node for a collection.
func GetNodesByCollection(q dbstore.Querier, collectionName string) ([]Node, error) {
	rows, err := q.Query(
		`SELECT file_path, module_path, lang, is_external, package_name, hash
		 FROM dependency_nodes WHERE collection_id = ?`, collectionName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanNodes(rows)
}

func scanNodes(rows *sql.Rows) ([]Node, error) {
	var nodes []Node
	for rows.Next() {
		var n Node
		var isExt int
		var pkg sql.NullString
		if err := rows.Scan(&n.FilePath, &n.ModulePath, &n.Lang, &isExt, &pkg, &n.Hash); err != nil {
			return nil, err
		}
		n.IsExternal = isExt != 0
		if pkg.Valid {
			v := pkg.String
			n.PackageName = &v
		}
		nodes = append(nodes, n)
	}
	return nodes, rows.Err()
}

// GetEdgesBySource returns outgoing edges from sourceFile.
func GetEdgesBySource(q dbstore.Querier, collectionName, sourceFile string) ([]Edge, error) {
	rows, err := q.Query(
		`SELECT source_file, target_module, line_number, target_file, import_type, imported_names, is_resolved
		 FROM dependency_edges WHERE collection_id = ? AND source_file = ?`,
		collectionName, sourceFile)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEdges(rows)
}

// GetEdgesByTarget returns incoming edges pointing at targetFile.
func GetEdgesByTarget(q dbstore.Querier, collectionName, targetFile string) ([]Edge, error) {
	rows, err := q.Query(
		`SELECT source_file, target_module, line_number, target_file, import_type, imported_names, is_resolved
		 FROM dependency_edges WHERE collection_id = ? AND target_file = ?`,
		collectionName, targetFile)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEdges(rows)
}

// GetEdgesByPathPrefix returns edges whose source_file starts with prefix.
func GetEdgesByPathPrefix(q dbstore.Querier, collectionName, prefix string) ([]Edge, error) {
	rows, err := q.Query(
		`SELECT source_file, target_module, line_number, target_file, import_type, imported_names, is_resolved
		 FROM dependency_edges WHERE collection_id = ? AND source_file GLOB ?`,
		collectionName, prefix+"*")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEdges(rows)
}

func scanEdges(rows *sql.Rows) ([]Edge, error) {
	var edges []Edge
	for rows.Next() {
		var e Edge
		var target sql.NullString
		var names sql.NullString
		var resolved int
		if err := rows.Scan(&e.SourceFile, &e.TargetModule, &e.LineNumber, &target, &e.ImportType, &names, &resolved); err != nil {
			return nil, err
		}
		if target.Valid {
			v := target.String
			e.TargetFile = &v
		}
		e.ImportedNames = unmarshalNames(names)
		e.IsResolved = resolved != 0
		edges = append(edges, e)
	}
	return edges, rows.Err()
}

// DeleteFileFromGraph removes the node and its outgoing edges for path.
// Incoming edges from other files are retained so reverse-deps stay
// discoverable, per spec.md §4.3 and Open Question 3.
func DeleteFileFromGraph(db *dbstore.DB, collectionName, path string) error {
	return db.WithTransaction(func(tx *dbstore.DB) error {
		q := tx.Q()
		if _, err := q.Exec(`DELETE FROM dependency_nodes WHERE collection_id = ? AND file_path = ?`, collectionName, path); err != nil {
			return err
		}
		if _, err := q.Exec(`DELETE FROM dependency_edges WHERE collection_id = ? AND source_file = ?`, collectionName, path); err != nil {
			return err
		}
		return nil
	})
}

// ClearGraph removes every node and edge for a collection.
func ClearGraph(db *dbstore.DB, collectionName string) error {
	return db.WithTransaction(func(tx *dbstore.DB) error {
		q := tx.Q()
		if _, err := q.Exec(`DELETE FROM dependency_nodes WHERE collection_id = ?`, collectionName); err != nil {
			return err
		}
		if _, err := q.Exec(`DELETE FROM dependency_edges WHERE collection_id = ?`, collectionName); err != nil {
			return err
		}
		return nil
	})
}

// ReconcileStaleResolvedEdges marks edges is_resolved=0 when their
// target_file no longer names a live node — Open Question 3's suggested
// consistency sweep, run once at the end of a sync pass rather than on
// every edge write.
func ReconcileStaleResolvedEdges(db *dbstore.DB, collectionName string) error {
	_, err := db.Q().Exec(
		`UPDATE dependency_edges SET is_resolved = 0
		 WHERE collection_id = ? AND is_resolved = 1
		   AND target_file IS NOT NULL
		   AND target_file NOT IN (
		     SELECT file_path FROM dependency_nodes WHERE collection_id = ?
		   )`,
		collectionName, collectionName,
	)
	return err
}

// BFS walks outgoing edges from start up to maxDepth hops, returning the
// visited nodes (including start) and traversed edges. includeExternal
// controls whether unresolved/external edges (TargetFile == nil) are
// followed and returned.
func BFS(q dbstore.Querier, collectionName, start string, maxDepth int, includeExternal bool) ([]Node, []Edge, error) {
	visited := map[string]bool{start: true}
	frontier := []string{start}
	var allEdges []Edge

	for depth := 0; depth < maxDepth && len(frontier) > 0; depth++ {
		var next []string
		for _, file := range frontier {
			edges, err := GetEdgesBySource(q, collectionName, file)
			if err != nil {
				return nil, nil, err
			}
			for _, e := range edges {
				if e.TargetFile == nil {
					if includeExternal {
						allEdges = append(allEdges, e)
					}
					continue
				}
				allEdges = append(allEdges, e)
				if !visited[*e.TargetFile] {
					visited[*e.TargetFile] = true
					next = append(next, *e.TargetFile)
				}
			}
		}
		frontier = next
	}

	var nodes []Node
	for path := range visited {
		n, err := getNode(q, collectionName, path)
		if err != nil {
			return nil, nil, err
		}
		if n != nil {
			nodes = append(nodes, *n)
		}
	}
	return nodes, allEdges, nil
}

func getNode(q dbstore.Querier, collectionName, path string) (*Node, error) {
	row := q.QueryRow(
		`SELECT file_path, module_path, lang, is_external, package_name, hash
		 FROM dependency_nodes WHERE collection_id = ? AND file_path = ?`,
		collectionName, path)
	var n Node
	var isExt int
	var pkg sql.NullString
	if err := row.Scan(&n.FilePath, &n.ModulePath, &n.Lang, &isExt, &pkg, &n.Hash); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	n.IsExternal = isExt != 0
	if pkg.Valid {
		v := pkg.String
		n.PackageName = &v
	}
	return &n, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
