package contracts

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStudentContract(t *testing.T) {
	require.NoError(t, Validate(Student, []byte(`{"id": 7, "first_name": "John 42", "last_name": "World 42"}`)))
	require.Error(t, Validate(Student, []byte(`{"first_name": "John", "last_name": "Doe"}`)))
	require.Error(t, Validate(Student, []byte(`{"id": "7", "first_name": "John", "last_name": "Doe"}`)))
}

func TestStudentListContractRejectsEmptyList(t *testing.T) {
	require.NoError(t, Validate(StudentList, []byte(`[{"id": 1, "first_name": "A", "last_name": "B"}]`)))
	require.Error(t, Validate(StudentList, []byte(`[]`)))
}

func TestUnknownContract(t *testing.T) {
	_, err := Schema("course.schema.json")
	require.Error(t, err)
}
