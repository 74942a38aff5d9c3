package mongodb

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/trezcool/darasa/core/assignment"
)

type (
	assignmentDoc struct {
		ID          primitive.ObjectID `bson:"_id,omitempty"`
		ClassID     string             `bson:"class_id"`
		Title       string             `bson:"title"`
		Description string             `bson:"description"`
		DueDate     *time.Time         `bson:"due_date,omitempty"`
		CreatedAt   time.Time          `bson:"created_at"`
	}

	submissionDoc struct {
		ID           primitive.ObjectID `bson:"_id,omitempty"`
		AssignmentID string             `bson:"assignment_id"`
		StudentID    string             `bson:"student_id"`
		FilePath     string             `bson:"file_path"`
		Filename     string             `bson:"filename"`
		SubmittedAt  time.Time          `bson:"submitted_at"`
	}
)

func (d assignmentDoc) toDomain() assignment.Assignment {
	return assignment.Assignment{
		ID:          d.ID.Hex(),
		ClassID:     d.ClassID,
		Title:       d.Title,
		Description: d.Description,
		DueDate:     d.DueDate,
		CreatedAt:   d.CreatedAt,
	}
}

func (d submissionDoc) toDomain() assignment.Submission {
	return assignment.Submission{
		ID:           d.ID.Hex(),
		AssignmentID: d.AssignmentID,
		StudentID:    d.StudentID,
		FilePath:     d.FilePath,
		Filename:     d.Filename,
		SubmittedAt:  d.SubmittedAt,
	}
}

type assignmentRepository struct {
	col    *mongo.Collection
	subCol *mongo.Collection
}

var _ assignment.Repository = (*assignmentRepository)(nil) // interface compliance check

func NewAssignmentRepository(db *mongo.Database) assignment.Repository {
	return &assignmentRepository{
		col:    db.Collection(assignmentsCollection),
		subCol: db.Collection(submissionsCollection),
	}
}

func (repo *assignmentRepository) CreateAssignment(ctx context.Context, asg assignment.Assignment) (assignment.Assignment, error) {
	ctx, cancel := opContext(ctx)
	defer cancel()

	doc := assignmentDoc{
		ClassID:     asg.ClassID,
		Title:       asg.Title,
		Description: asg.Description,
		DueDate:     asg.DueDate,
		CreatedAt:   asg.CreatedAt,
	}
	res, err := repo.col.InsertOne(ctx, doc)
	if err != nil {
		return assignment.Assignment{}, errors.Wrap(err, "inserting assignment")
	}
	asg.ID = res.InsertedID.(primitive.ObjectID).Hex()
	return asg, nil
}

func (repo *assignmentRepository) GetAssignmentByID(ctx context.Context, id string) (assignment.Assignment, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return assignment.Assignment{}, assignment.ErrNotFound
	}

	ctx, cancel := opContext(ctx)
	defer cancel()

	var doc assignmentDoc
	if err = repo.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return assignment.Assignment{}, assignment.ErrNotFound
		}
		return assignment.Assignment{}, errors.Wrap(err, "finding assignment")
	}
	return doc.toDomain(), nil
}

func (repo *assignmentRepository) FilterAssignmentsByClass(ctx context.Context, classID string) ([]assignment.Assignment, error) {
	ctx, cancel := opContext(ctx)
	defer cancel()

	cursor, err := repo.col.Find(ctx, bson.M{"class_id": classID}, options.Find().SetLimit(maxResults))
	if err != nil {
		return nil, errors.Wrap(err, "finding assignments")
	}
	defer func() { _ = cursor.Close(ctx) }()

	asgs := make([]assignment.Assignment, 0)
	for cursor.Next(ctx) {
		var doc assignmentDoc
		if err = cursor.Decode(&doc); err != nil {
			return nil, errors.Wrap(err, "decoding assignment")
		}
		asgs = append(asgs, doc.toDomain())
	}
	return asgs, errors.Wrap(cursor.Err(), "iterating assignments")
}

func (repo *assignmentRepository) CreateSubmission(ctx context.Context, sub assignment.Submission) (assignment.Submission, error) {
	ctx, cancel := opContext(ctx)
	defer cancel()

	doc := submissionDoc{
		AssignmentID: sub.AssignmentID,
		StudentID:    sub.StudentID,
		FilePath:     sub.FilePath,
		Filename:     sub.Filename,
		SubmittedAt:  sub.SubmittedAt,
	}
	res, err := repo.subCol.InsertOne(ctx, doc)
	if err != nil {
		return assignment.Submission{}, errors.Wrap(err, "inserting submission")
	}
	sub.ID = res.InsertedID.(primitive.ObjectID).Hex()
	return sub, nil
}

func (repo *assignmentRepository) FilterSubmissionsByAssignment(ctx context.Context, assignmentID string) ([]assignment.Submission, error) {
	ctx, cancel := opContext(ctx)
	defer cancel()

	cursor, err := repo.subCol.Find(ctx, bson.M{"assignment_id": assignmentID}, options.Find().SetLimit(maxResults))
	if err != nil {
		return nil, errors.Wrap(err, "finding submissions")
	}
	defer func() { _ = cursor.Close(ctx) }()

	subs := make([]assignment.Submission, 0)
	for cursor.Next(ctx) {
		var doc submissionDoc
		if err = cursor.Decode(&doc); err != nil {
			return nil, errors.Wrap(err, "decoding submission")
		}
		subs = append(subs, doc.toDomain())
	}
	return subs, errors.Wrap(cursor.Err(), "iterating submissions")
}
