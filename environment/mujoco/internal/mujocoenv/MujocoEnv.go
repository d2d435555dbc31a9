// Package mujocoenv implements environments that use the MuJoCo
// physics simulator through cgo. The simulator owns all physical
// state; this package only moves data across the boundary.
package mujocoenv

// * Leaving the cgo directives in so VSCode doesn't complain, even though
// * CGO_CFLAGS and CGO_LDFLAGS have been set.

// #cgo CFLAGS: -O2 -I/home/samuel/.mujoco/mujoco200_linux/include -mavx -pthread
// #cgo LDFLAGS: -L/home/samuel/.mujoco/mujoco200_linux/bin -lmujoco200nogl
// #include "mujoco.h"
// #include <stdio.h>
// #include <stdlib.h>
//
// void setQPos(mjData* data, double* positions, int len) {
// 	for (int i = 0; i < len; i++) {
// 		data->qpos[i] = positions[i];
// 	}
// }
//
// void setQVel(mjData* data, double* velocities, int len) {
// 	for (int i = 0; i < len; i++){
// 		data->qvel[i] = velocities[i];
// 	}
// }
//
// void setCtrl(mjData* data, double* control, int len) {
// 	for (int i = 0; i < len; i++){
// 		data->ctrl[i] = control[i];
// 	}
// }
import "C"

import (
	"fmt"
	"os"
	"path"
	"runtime"
	"unsafe"

	"gonum.org/v1/gonum/mat"

	"github.com/samuelfneumann/goarm/environment"
)

func init() {
	// Activate MuJoCo
	mjKey := C.CString("/home/samuel/.mujoco/mjkey.txt")
	defer C.free(unsafe.Pointer(mjKey))
	C.mj_activate(mjKey)
}

// MujocoEnv wraps a single MuJoCo model and its mutable simulation
// state. Each MujocoEnv exclusively owns its Model and Data; the
// wrapper is not safe for concurrent use.
type MujocoEnv struct {
	FrameSkip int
	Model     *C.mjModel
	Data      *C.mjData
	Seed      uint64
	Discount  float64

	InitQPos *mat.VecDense
	InitQVel *mat.VecDense

	Nu, Nv, Nq, Na int
}

// NewMujocoEnv returns a new MujocoEnv from a scene description file.
// The xmlPath argument may be an absolute path, a path relative to the
// current directory, or the bare name of a file in the package's
// assets directory.
func NewMujocoEnv(xmlPath string, frameSkip int, seed uint64,
	discount float64) (*MujocoEnv, error) {
	fullPath, err := resolvePath(xmlPath)
	if err != nil {
		return nil, fmt.Errorf("newMujocoEnv: %v", err)
	}

	model, data, err := loadXML(fullPath)
	if err != nil {
		return nil, fmt.Errorf("newMujocoEnv: could not load XML: %v", err)
	}

	nq := int(model.nq)
	nu := int(model.nu)
	nv := int(model.nv)
	na := int(model.na)

	initQPos := F64SliceC2Go(data.qpos, nq)
	initQVel := F64SliceC2Go(data.qvel, nv)

	// Seed the environment
	C.srand(C.uint(seed))

	return &MujocoEnv{
		FrameSkip: frameSkip,
		Model:     model,
		Data:      data,
		Seed:      seed,
		Discount:  discount,
		Nu:        nu,
		Nv:        nv,
		Nq:        nq,
		Na:        na,
		InitQPos:  mat.NewVecDense(len(initQPos), initQPos),
		InitQVel:  mat.NewVecDense(len(initQVel), initQVel),
	}, nil
}

// resolvePath finds the full path to a scene description file, looking
// first relative to the working directory and then in the assets
// directory adjacent to this package.
func resolvePath(xmlPath string) (string, error) {
	if len(xmlPath) == 0 {
		return "", fmt.Errorf("resolvePath: empty scene file path")
	}
	if xmlPath[0] == '/' || (len(xmlPath) > 1 && xmlPath[0:2] == "./") {
		if _, err := os.Stat(xmlPath); os.IsNotExist(err) {
			return "", fmt.Errorf("resolvePath: no such path '%v'", xmlPath)
		}
		return xmlPath, nil
	}

	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("resolvePath: could not get current "+
			"directory for finding mujoco/assets/ dir: %v", err)
	}
	fullPath := path.Join(wd, "environment/mujoco/assets", xmlPath)
	if _, err := os.Stat(fullPath); err == nil {
		return fullPath, nil
	}

	// Tests run with the package directory as the working directory,
	// so fall back to the assets directory relative to this source file
	_, sourcePath, _, ok := runtime.Caller(0)
	if ok {
		fullPath = path.Join(path.Dir(sourcePath), "../../assets", xmlPath)
		if _, err := os.Stat(fullPath); err == nil {
			return fullPath, nil
		}
	}

	return "", fmt.Errorf("resolvePath: no such scene file '%v'", xmlPath)
}

// Reset resets the simulator state. "Concrete" environments should
// have a Reset which calls this Reset before setting their start state.
func (m *MujocoEnv) Reset() {
	C.mj_resetData(m.Model, m.Data)
}

// QPos returns a copy of the current generalized positions
func (m *MujocoEnv) QPos() []float64 {
	return F64SliceC2Go(m.Data.qpos, m.Nq)
}

// QVel returns a copy of the current generalized velocities
func (m *MujocoEnv) QVel() []float64 {
	return F64SliceC2Go(m.Data.qvel, m.Nv)
}

// Ctrl returns a copy of the current actuator control targets
func (m *MujocoEnv) Ctrl() []float64 {
	return F64SliceC2Go(m.Data.ctrl, m.Nu)
}

// SetState sets the generalized positions and velocities of the
// simulator and recomputes dependent quantities with a single forward
// kinematics pass. No simulation time passes.
func (m *MujocoEnv) SetState(qpos, qvel []float64) error {
	if len(qpos) != m.Nq {
		return fmt.Errorf("setState: invalid position dimensions \n\t"+
			"have(%v) \n\twant(%v)", len(qpos), m.Nq)
	}
	if len(qvel) != m.Nv {
		return fmt.Errorf("setState: invalid velocity dimensions \n\t"+
			"have(%v) \n\twant(%v)", len(qvel), m.Nv)
	}

	// Set the state
	C.setQPos(m.Data, (*C.double)(unsafe.Pointer(&qpos[0])), C.int(len(qpos)))
	C.setQVel(m.Data, (*C.double)(unsafe.Pointer(&qvel[0])), C.int(len(qvel)))

	C.mj_forward(m.Model, m.Data)
	return nil
}

// Dt returns the simulation time that passes on each environmental step
func (m *MujocoEnv) Dt() float64 {
	return float64(m.Model.opt.timestep) * float64(m.FrameSkip)
}

// DoSimulation writes the argument control targets to the simulator's
// actuation inputs and advances the simulation nFrames physics steps.
func (m *MujocoEnv) DoSimulation(control *mat.VecDense, nFrames int) error {
	if control.Len() != m.Nu {
		return fmt.Errorf("doSimulation: invalid control dimensions \n\t"+
			"have(%v) \n\twant(%v)", control.Len(), m.Nu)
	}

	action := make([]float64, control.Len())
	copy(action, control.RawVector().Data)
	C.setCtrl(m.Data, (*C.double)(unsafe.Pointer(&action[0])),
		C.int(len(action)))

	for i := 0; i < nFrames; i++ {
		C.mj_step(m.Model, m.Data)
	}
	return nil
}

// BodyXPos returns the Cartesian position of the frame of a named body
func (m *MujocoEnv) BodyXPos(name string) (*mat.VecDense, error) {
	id, err := m.nameToID(C.int(C.mjOBJ_BODY), name)
	if err != nil {
		return nil, fmt.Errorf("bodyXPos: no body named '%v'", name)
	}

	xpos := F64SliceC2Go(m.Data.xpos, 3*int(m.Model.nbody))
	return mat.NewVecDense(3, xpos[3*id:3*id+3]), nil
}

// BodyJacobian returns the translational Jacobian of the frame of a
// named body as a 3 x Nv matrix mapping joint velocities to the
// Cartesian velocity of the body frame.
func (m *MujocoEnv) BodyJacobian(name string) (*mat.Dense, error) {
	id, err := m.nameToID(C.int(C.mjOBJ_BODY), name)
	if err != nil {
		return nil, fmt.Errorf("bodyJacobian: no body named '%v'", name)
	}

	jacp := make([]float64, 3*m.Nv)
	C.mj_jacBody(m.Model, m.Data,
		(*C.mjtNum)(unsafe.Pointer(&jacp[0])), nil, C.int(id))

	return mat.NewDense(3, m.Nv, jacp), nil
}

// JointQPosAddr returns the index into QPos at which the position data
// of a named joint begins
func (m *MujocoEnv) JointQPosAddr(name string) (int, error) {
	id, err := m.nameToID(C.int(C.mjOBJ_JOINT), name)
	if err != nil {
		return 0, fmt.Errorf("jointQPosAddr: no joint named '%v'", name)
	}

	addrs := IntSliceC2Go(m.Model.jnt_qposadr, int(m.Model.njnt))
	return addrs[id], nil
}

// JointQVelAddr returns the index into QVel at which the degree of
// freedom data of a named joint begins
func (m *MujocoEnv) JointQVelAddr(name string) (int, error) {
	id, err := m.nameToID(C.int(C.mjOBJ_JOINT), name)
	if err != nil {
		return 0, fmt.Errorf("jointQVelAddr: no joint named '%v'", name)
	}

	addrs := IntSliceC2Go(m.Model.jnt_dofadr, int(m.Model.njnt))
	return addrs[id], nil
}

// nameToID resolves the name of a model object of some type to its
// integer id in the model
func (m *MujocoEnv) nameToID(objType C.int, name string) (int, error) {
	cName := C.CString(name)
	defer C.free(unsafe.Pointer(cName))

	id := int(C.mj_name2id(m.Model, objType, cName))
	if id < 0 {
		return 0, fmt.Errorf("nameToID: no object named '%v'", name)
	}
	return id, nil
}

// DiscountSpec returns the discount specification of the environment
func (m *MujocoEnv) DiscountSpec() environment.Spec {
	bounds := mat.NewVecDense(1, []float64{m.Discount})

	return environment.NewSpec(mat.NewVecDense(1, nil), environment.Discount,
		bounds, bounds, environment.Continuous)
}

// ActionSpec returns the action specification of the environment,
// with bounds taken from the control ranges of the model's actuators
func (m *MujocoEnv) ActionSpec() environment.Spec {
	bounds := F64SliceC2Go(m.Model.actuator_ctrlrange, m.Nu*2)

	low := make([]float64, m.Nu)
	high := make([]float64, m.Nu)
	for i := 0; i < m.Nu; i++ {
		low[i] = bounds[2*i]
		high[i] = bounds[2*i+1]
	}

	lowVec := mat.NewVecDense(m.Nu, low)
	highVec := mat.NewVecDense(m.Nu, high)
	shape := mat.NewVecDense(m.Nu, nil)

	return environment.NewSpec(shape, environment.Action, lowVec, highVec,
		environment.Continuous)
}

// Close frees the simulator's model and state
func (m *MujocoEnv) Close() error {
	C.mj_deleteModel(m.Model)
	C.mj_deleteData(m.Data)
	return nil
}
