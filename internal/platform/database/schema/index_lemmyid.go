package schema

// RefLemmyIDTable represents the 'lemmy_ids' table
type RefLemmyIDTable struct {
	Table           string
	PostRemoteID    string
	PostActorID     string
	InstanceActorID string
}

// RefLemmyID is the schema definition for lemmy_ids
var RefLemmyID = RefLemmyIDTable{
	Table:           "lemmy_ids",
	PostRemoteID:    "post_remote_id",
	PostActorID:     "post_actor_id",
	InstanceActorID: "instance_actor_id",
}

func (t RefLemmyIDTable) Columns() []string {
	return []string{t.PostRemoteID, t.PostActorID, t.InstanceActorID}
}
