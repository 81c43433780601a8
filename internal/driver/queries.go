package driver

var indexQueries = []string{
	"CREATE INDEX ON :Patient(run_id);",
	"CREATE INDEX ON :Patient(id);",
	"CREATE INDEX ON :Cluster(run_id);",
}

const (
	SavePatientsQuery = `
		UNWIND $ids AS id
		MERGE (p:Patient {id: id, run_id: $run_id})
		RETURN count(p) AS saved
	`

	SaveContactsQuery = `
		UNWIND $edges AS e
		MATCH (a:Patient {id: e.source, run_id: $run_id})
		MATCH (b:Patient {id: e.target, run_id: $run_id})
		MERGE (a)-[c:CONTACT {organism: e.organism, location: e.location, run_id: $run_id}]->(b)
		RETURN count(c) AS saved
	`

	SaveClusterQuery = `
		MERGE (c:Cluster {run_id: $run_id, cluster_id: $cluster_id})
		SET c.size = $size
		WITH c
		UNWIND $members AS id
		MATCH (p:Patient {id: id, run_id: $run_id})
		MERGE (c)-[:HAS_MEMBER]->(p)
		RETURN count(p) AS members
	`

	DeleteRunQuery = `
		MATCH (n {run_id: $run_id})
		DETACH DELETE n
	`
)
