package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/aristath/taskplanner/internal/model"
)

// DefaultDatabase is the MongoDB database used when none is configured.
const DefaultDatabase = "smart_task_planner"

// MongoStore implements Store on a MongoDB database with one collection per
// record kind. Ids are ObjectID hex strings.
type MongoStore struct {
	client *mongo.Client
	goals  *mongo.Collection
	tasks  *mongo.Collection
}

type goalDoc struct {
	ID                  primitive.ObjectID `bson:"_id,omitempty"`
	Title               string             `bson:"title"`
	Description         string             `bson:"description"`
	Deadline            *time.Time         `bson:"deadline,omitempty"`
	TotalEstimatedHours *float64           `bson:"total_estimated_hours,omitempty"`
	CreatedAt           time.Time          `bson:"created_at"`
	UpdatedAt           time.Time          `bson:"updated_at"`
}

type dependencyDoc struct {
	TaskID    string `bson:"task_id"`
	TaskTitle string `bson:"task_title"`
}

type taskDoc struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	GoalID         string             `bson:"goal_id"`
	Title          string             `bson:"title"`
	Description    string             `bson:"description"`
	Status         string             `bson:"status"`
	Priority       string             `bson:"priority"`
	EstimatedHours *float64           `bson:"estimated_hours,omitempty"`
	StartDate      *time.Time         `bson:"start_date,omitempty"`
	EndDate        *time.Time         `bson:"end_date,omitempty"`
	Dependencies   []dependencyDoc    `bson:"dependencies"`
	CreatedAt      time.Time          `bson:"created_at"`
	UpdatedAt      time.Time          `bson:"updated_at"`
}

// NewMongoStore connects to uri and binds the goals and tasks collections of
// database. It does not wait for the server; call Ping for that.
func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	if database == "" {
		database = DefaultDatabase
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	db := client.Database(database)
	return &MongoStore{
		client: client,
		goals:  db.Collection("goals"),
		tasks:  db.Collection("tasks"),
	}, nil
}

// Ping checks the primary is reachable.
func (s *MongoStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

// Close disconnects the client.
func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func (s *MongoStore) InsertGoal(ctx context.Context, goal *model.Goal) error {
	ts := now()
	goal.CreatedAt = ts
	goal.UpdatedAt = ts

	doc := toGoalDoc(goal)
	doc.ID = primitive.NewObjectID()
	if _, err := s.goals.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to insert goal: %w", err)
	}
	goal.ID = doc.ID.Hex()
	return nil
}

func (s *MongoStore) SaveGoal(ctx context.Context, goal *model.Goal) error {
	oid, err := objectID("goal", goal.ID)
	if err != nil {
		return err
	}
	goal.UpdatedAt = now()

	doc := toGoalDoc(goal)
	doc.ID = oid
	res, err := s.goals.ReplaceOne(ctx, bson.M{"_id": oid}, doc)
	if err != nil {
		return fmt.Errorf("failed to update goal: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%w: goal %s", model.ErrNotFound, goal.ID)
	}
	return nil
}

func (s *MongoStore) GetGoal(ctx context.Context, id string) (*model.Goal, error) {
	oid, err := objectID("goal", id)
	if err != nil {
		return nil, err
	}
	var doc goalDoc
	err = s.goals.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%w: goal %s", model.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query goal: %w", err)
	}
	return doc.toModel(), nil
}

func (s *MongoStore) ListGoals(ctx context.Context) ([]*model.Goal, error) {
	cur, err := s.goals.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to query goals: %w", err)
	}
	var docs []goalDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode goals: %w", err)
	}

	goals := make([]*model.Goal, 0, len(docs))
	for i := range docs {
		goals = append(goals, docs[i].toModel())
	}
	return goals, nil
}

func (s *MongoStore) DeleteGoal(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil
	}
	if _, err := s.goals.DeleteOne(ctx, bson.M{"_id": oid}); err != nil {
		return fmt.Errorf("failed to delete goal: %w", err)
	}
	return nil
}

func (s *MongoStore) InsertTask(ctx context.Context, task *model.Task) error {
	ts := now()
	task.CreatedAt = ts
	task.UpdatedAt = ts

	doc := toTaskDoc(task)
	doc.ID = primitive.NewObjectID()
	if _, err := s.tasks.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to insert task: %w", err)
	}
	task.ID = doc.ID.Hex()
	return nil
}

func (s *MongoStore) SaveTask(ctx context.Context, task *model.Task) error {
	oid, err := objectID("task", task.ID)
	if err != nil {
		return err
	}
	task.UpdatedAt = now()

	doc := toTaskDoc(task)
	doc.ID = oid
	res, err := s.tasks.ReplaceOne(ctx, bson.M{"_id": oid}, doc)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%w: task %s", model.ErrNotFound, task.ID)
	}
	return nil
}

func (s *MongoStore) GetTask(ctx context.Context, id string) (*model.Task, error) {
	oid, err := objectID("task", id)
	if err != nil {
		return nil, err
	}
	var doc taskDoc
	err = s.tasks.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%w: task %s", model.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query task: %w", err)
	}
	return doc.toModel(), nil
}

func (s *MongoStore) FindTasksByGoal(ctx context.Context, goalID string) ([]*model.Task, error) {
	cur, err := s.tasks.Find(ctx, bson.M{"goal_id": goalID}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	var docs []taskDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode tasks: %w", err)
	}

	tasks := make([]*model.Task, 0, len(docs))
	for i := range docs {
		tasks = append(tasks, docs[i].toModel())
	}
	return tasks, nil
}

func (s *MongoStore) DeleteTasksByGoal(ctx context.Context, goalID string) error {
	if _, err := s.tasks.DeleteMany(ctx, bson.M{"goal_id": goalID}); err != nil {
		return fmt.Errorf("failed to delete tasks for goal %s: %w", goalID, err)
	}
	return nil
}

// objectID parses a hex id. Malformed ids cannot name a stored record, so
// they are reported as not found.
func objectID(kind, id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %s %s", model.ErrNotFound, kind, id)
	}
	return oid, nil
}

func toGoalDoc(g *model.Goal) goalDoc {
	return goalDoc{
		Title:               g.Title,
		Description:         g.Description,
		Deadline:            g.Deadline,
		TotalEstimatedHours: g.TotalEstimatedHours,
		CreatedAt:           g.CreatedAt,
		UpdatedAt:           g.UpdatedAt,
	}
}

func (d *goalDoc) toModel() *model.Goal {
	return &model.Goal{
		ID:                  d.ID.Hex(),
		Title:               d.Title,
		Description:         d.Description,
		Deadline:            utcPtr(d.Deadline),
		TotalEstimatedHours: d.TotalEstimatedHours,
		CreatedAt:           d.CreatedAt.UTC(),
		UpdatedAt:           d.UpdatedAt.UTC(),
	}
}

func toTaskDoc(t *model.Task) taskDoc {
	deps := make([]dependencyDoc, 0, len(t.Dependencies))
	for _, dep := range t.Dependencies {
		deps = append(deps, dependencyDoc{TaskID: dep.TaskID, TaskTitle: dep.TaskTitle})
	}
	return taskDoc{
		GoalID:         t.GoalID,
		Title:          t.Title,
		Description:    t.Description,
		Status:         string(t.Status),
		Priority:       string(t.Priority),
		EstimatedHours: t.EstimatedHours,
		StartDate:      t.StartDate,
		EndDate:        t.EndDate,
		Dependencies:   deps,
		CreatedAt:      t.CreatedAt,
		UpdatedAt:      t.UpdatedAt,
	}
}

func (d *taskDoc) toModel() *model.Task {
	deps := make([]model.TaskDependency, 0, len(d.Dependencies))
	for _, dep := range d.Dependencies {
		deps = append(deps, model.TaskDependency{TaskID: dep.TaskID, TaskTitle: dep.TaskTitle})
	}
	return &model.Task{
		ID:             d.ID.Hex(),
		GoalID:         d.GoalID,
		Title:          d.Title,
		Description:    d.Description,
		Status:         model.TaskStatus(d.Status),
		Priority:       model.TaskPriority(d.Priority),
		EstimatedHours: d.EstimatedHours,
		StartDate:      utcPtr(d.StartDate),
		EndDate:        utcPtr(d.EndDate),
		Dependencies:   deps,
		CreatedAt:      d.CreatedAt.UTC(),
		UpdatedAt:      d.UpdatedAt.UTC(),
	}
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
