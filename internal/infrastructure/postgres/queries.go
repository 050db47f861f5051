package postgres

import (
	sq "github.com/Masterminds/squirrel"
)

const documentsTable = "documents"

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

func getQuery(collection, id string, forUpdate bool) sq.SelectBuilder {
	q := psql.Select("fields").
		From(documentsTable).
		Where(sq.Eq{"collection": collection, "id": id})
	if forUpdate {
		q = q.Suffix("FOR UPDATE")
	}
	return q
}

func listQuery(collection string) sq.SelectBuilder {
	return psql.Select("id", "fields").
		From(documentsTable).
		Where(sq.Eq{"collection": collection}).
		OrderBy("id")
}

func insertQuery(collection, id string, data []byte) sq.InsertBuilder {
	return psql.Insert(documentsTable).
		Columns("collection", "id", "fields").
		Values(collection, id, sq.Expr("?::jsonb", string(data)))
}

// updateQuery mezcla los campos nuevos sobre el JSONB existente (||).
func updateQuery(collection, id string, data []byte) sq.UpdateBuilder {
	return psql.Update(documentsTable).
		Set("fields", sq.Expr("fields || ?::jsonb", string(data))).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"collection": collection, "id": id})
}

func deleteQuery(collection, id string) sq.DeleteBuilder {
	return psql.Delete(documentsTable).
		Where(sq.Eq{"collection": collection, "id": id})
}

// incrementQuery upsert atómico: crea el documento con el campo en delta o suma delta
// al valor actual (ausente = 0) en una sola sentencia.
func incrementQuery(collection, id, field string, delta int64) sq.InsertBuilder {
	return psql.Insert(documentsTable).
		Columns("collection", "id", "fields").
		Values(collection, id, sq.Expr("jsonb_build_object(?::text, ?::bigint)", field, delta)).
		Suffix(`ON CONFLICT (collection, id) DO UPDATE
			SET fields = documents.fields || jsonb_build_object(?::text, COALESCE((documents.fields->>?)::numeric, 0) + ?::bigint),
			    updated_at = now()
			RETURNING (fields->>?)::numeric`, field, field, delta, field)
}
