package mongodb

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/trezcool/darasa/core/classroom"
)

type classroomDoc struct {
	ID              primitive.ObjectID `bson:"_id,omitempty"`
	Name            string             `bson:"name"`
	Description     string             `bson:"description,omitempty"`
	TeacherID       string             `bson:"teacher_id"`
	ClassCode       string             `bson:"class_code"`
	Students        []string           `bson:"students"`
	PendingRequests []string           `bson:"pending_requests"`
}

func (d classroomDoc) toDomain() classroom.Classroom {
	cls := classroom.Classroom{
		ID:              d.ID.Hex(),
		Name:            d.Name,
		Description:     d.Description,
		TeacherID:       d.TeacherID,
		ClassCode:       d.ClassCode,
		Students:        d.Students,
		PendingRequests: d.PendingRequests,
	}
	if cls.Students == nil {
		cls.Students = []string{}
	}
	if cls.PendingRequests == nil {
		cls.PendingRequests = []string{}
	}
	return cls
}

type classroomRepository struct {
	col *mongo.Collection
}

var _ classroom.Repository = (*classroomRepository)(nil) // interface compliance check

func NewClassroomRepository(db *mongo.Database) classroom.Repository {
	return &classroomRepository{col: db.Collection(classroomsCollection)}
}

func (repo *classroomRepository) CreateClassroom(ctx context.Context, cls classroom.Classroom) (classroom.Classroom, error) {
	ctx, cancel := opContext(ctx)
	defer cancel()

	doc := classroomDoc{
		Name:            cls.Name,
		Description:     cls.Description,
		TeacherID:       cls.TeacherID,
		ClassCode:       cls.ClassCode,
		Students:        cls.Students,
		PendingRequests: cls.PendingRequests,
	}
	res, err := repo.col.InsertOne(ctx, doc)
	if err != nil {
		return classroom.Classroom{}, errors.Wrap(err, "inserting classroom")
	}
	cls.ID = res.InsertedID.(primitive.ObjectID).Hex()
	return cls, nil
}

func (repo *classroomRepository) GetClassroomByID(ctx context.Context, id string) (classroom.Classroom, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return classroom.Classroom{}, classroom.ErrNotFound
	}
	return repo.getClassroom(ctx, bson.M{"_id": oid})
}

func (repo *classroomRepository) GetClassroomByCode(ctx context.Context, code string) (classroom.Classroom, error) {
	return repo.getClassroom(ctx, bson.M{"class_code": code})
}

func (repo *classroomRepository) getClassroom(ctx context.Context, filter bson.M) (classroom.Classroom, error) {
	ctx, cancel := opContext(ctx)
	defer cancel()

	var doc classroomDoc
	if err := repo.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return classroom.Classroom{}, classroom.ErrNotFound
		}
		return classroom.Classroom{}, errors.Wrap(err, "finding classroom")
	}
	return doc.toDomain(), nil
}

func (repo *classroomRepository) QueryAllClassrooms(ctx context.Context) ([]classroom.Classroom, error) {
	return repo.filterClassrooms(ctx, bson.M{})
}

func (repo *classroomRepository) FilterClassroomsByTeacher(ctx context.Context, teacherID string) ([]classroom.Classroom, error) {
	return repo.filterClassrooms(ctx, bson.M{"teacher_id": teacherID})
}

func (repo *classroomRepository) FilterClassroomsByStudent(ctx context.Context, studentID string) ([]classroom.Classroom, error) {
	return repo.filterClassrooms(ctx, bson.M{"students": studentID})
}

func (repo *classroomRepository) FilterPendingClassroomsByTeacher(ctx context.Context, teacherID string) ([]classroom.Classroom, error) {
	return repo.filterClassrooms(ctx, bson.M{"teacher_id": teacherID, "pending_requests": bson.M{"$ne": bson.A{}}})
}

func (repo *classroomRepository) filterClassrooms(ctx context.Context, filter bson.M) ([]classroom.Classroom, error) {
	ctx, cancel := opContext(ctx)
	defer cancel()

	cursor, err := repo.col.Find(ctx, filter, options.Find().SetLimit(maxResults))
	if err != nil {
		return nil, errors.Wrap(err, "finding classrooms")
	}
	defer func() { _ = cursor.Close(ctx) }()

	clss := make([]classroom.Classroom, 0)
	for cursor.Next(ctx) {
		var doc classroomDoc
		if err = cursor.Decode(&doc); err != nil {
			return nil, errors.Wrap(err, "decoding classroom")
		}
		clss = append(clss, doc.toDomain())
	}
	return clss, errors.Wrap(cursor.Err(), "iterating classrooms")
}

func (repo *classroomRepository) AddPendingRequest(ctx context.Context, classID, studentID string) error {
	oid, err := primitive.ObjectIDFromHex(classID)
	if err != nil {
		return classroom.ErrNotFound
	}

	ctx, cancel := opContext(ctx)
	defer cancel()

	res, err := repo.col.UpdateOne(
		ctx,
		bson.M{"_id": oid},
		bson.M{"$push": bson.M{"pending_requests": studentID}},
	)
	if err != nil {
		return errors.Wrap(err, "adding pending request")
	}
	if res.MatchedCount == 0 {
		return classroom.ErrNotFound
	}
	return nil
}

// ApproveStudent moves the student from pending_requests to students in one
// combined $pull/$push update so concurrent approvals cannot observe the
// student in neither or both sets.
func (repo *classroomRepository) ApproveStudent(ctx context.Context, classID, studentID string) error {
	oid, err := primitive.ObjectIDFromHex(classID)
	if err != nil {
		return classroom.ErrNotFound
	}

	ctx, cancel := opContext(ctx)
	defer cancel()

	res, err := repo.col.UpdateOne(
		ctx,
		bson.M{"_id": oid, "pending_requests": studentID},
		bson.M{
			"$pull": bson.M{"pending_requests": studentID},
			"$push": bson.M{"students": studentID},
		},
	)
	if err != nil {
		return errors.Wrap(err, "approving student")
	}
	if res.MatchedCount == 0 {
		return classroom.ErrStudentNotPending
	}
	return nil
}
